package functions

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/virajbhartiya/map-reduce/internal/types"
)

// WordCount splits the input on whitespace and emits ("word", "1") for
// every occurrence, lower-cased.
func WordCount(input string) []types.KeyValue {
	fields := strings.Fields(input)
	kvs := make([]types.KeyValue, 0, len(fields))
	for _, word := range fields {
		kvs = append(kvs, types.KeyValue{Key: strings.ToLower(word), Value: "1"})
	}
	return kvs
}

// CharFrequency emits ("c", "1") for every non-whitespace rune in the
// input, lower-cased.
func CharFrequency(input string) []types.KeyValue {
	var kvs []types.KeyValue
	for _, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		kvs = append(kvs, types.KeyValue{Key: strings.ToLower(string(r)), Value: "1"})
	}
	return kvs
}

// Sum parses every value as an integer and returns the total. Any value
// that fails to parse fails the whole reduction.
func Sum(key string, values []string) (string, error) {
	total := int64(0)
	for _, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", fmt.Errorf("value %q for key %q is not an integer", v, key)
		}
		total += n
	}
	return strconv.FormatInt(total, 10), nil
}

// Max parses every value as an integer and returns the largest.
func Max(key string, values []string) (string, error) {
	max := int64(0)
	for i, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", fmt.Errorf("value %q for key %q is not an integer", v, key)
		}
		if i == 0 || n > max {
			max = n
		}
	}
	return strconv.FormatInt(max, 10), nil
}
