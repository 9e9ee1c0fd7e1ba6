package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StringAttr wraps a string as a DynamoDB attribute value
func StringAttr(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// PairKey builds the composite key of an access-request table
func PairKey(requesterID, targetID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"requesterId": StringAttr(requesterID),
		"targetId":    StringAttr(targetID),
	}
}

// IDKey builds the key of the profiles table
func IDKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": StringAttr(id)}
}
