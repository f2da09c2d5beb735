package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// SnowflakeID is stored as BIGINT and travels over JSON as a string so
// browsers do not lose precision.
type SnowflakeID int64

func (s SnowflakeID) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SnowflakeID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = 0
		return nil
	case int64:
		*s = SnowflakeID(v)
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	default:
		return fmt.Errorf("cannot convert %v to SnowflakeID", value)
	}
}

func (s *SnowflakeID) parse(str string) error {
	i, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return err
	}
	*s = SnowflakeID(i)
	return nil
}

func (s SnowflakeID) String() string {
	return strconv.FormatInt(int64(s), 10)
}

func (s SnowflakeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts both "123" and 123.
func (s *SnowflakeID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			*s = 0
			return nil
		}
		if err := s.parse(str); err != nil {
			return fmt.Errorf("invalid snowflake ID string: %w", err)
		}
		return nil
	}

	var num int64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = SnowflakeID(num)
		return nil
	}

	return fmt.Errorf("invalid snowflake ID format")
}

// ParseSnowflakeID is used for route params.
func ParseSnowflakeID(str string) (SnowflakeID, error) {
	var s SnowflakeID
	if err := s.parse(str); err != nil {
		return 0, fmt.Errorf("invalid snowflake ID %q: %w", str, err)
	}
	return s, nil
}
