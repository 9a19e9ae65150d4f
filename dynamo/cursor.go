package dynamo

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Cursors travel in query strings, so they use the URL-safe alphabet.
var cursorEncoding = base64.RawURLEncoding

func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	raw, err := attributevalue.MarshalMapJSON(key)
	if err != nil {
		return "", fmt.Errorf("failed to encode key to JSON: %w", err)
	}

	return cursorEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := cursorEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}

	key, err := attributevalue.UnmarshalMapJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key JSON: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("cursor holds no key")
	}

	return key, nil
}

// keyOf projects item onto the attributes named in shape, which is the
// LastEvaluatedKey of the page the item came from.
func keyOf(shape map[string]types.AttributeValue, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(shape))
	for name := range shape {
		key[name] = item[name]
	}
	return key
}
