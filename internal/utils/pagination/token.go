package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeToken creates a base64 cursor from an entry date and entry ID.
// The composite (date, id) key keeps pagination stable under concurrent
// inserts, unlike a plain offset.
func EncodeToken(entryDate time.Time, entryID int64) string {
	tokenStr := fmt.Sprintf("%s|%d", entryDate.Format(timeFormat), entryID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// EncodeCodeToken creates a base64 cursor from an entity code, for listings
// ordered by code.
func EncodeCodeToken(code string) string {
	return base64.StdEncoding.EncodeToString([]byte(code))
}

// DecodeCodeToken parses a code cursor.
func DecodeCodeToken(token string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return string(decoded), nil
}

// DecodeToken parses a cursor back into entry date and entry ID.
func DecodeToken(token string) (time.Time, int64, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	entryID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (id parse): %w", err)
	}

	return entryDate, entryID, nil
}
