package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestEmailClaimKey(t *testing.T) {
	assert.Equal(t, "email#alice@example.com", emailClaimKey("alice@example.com"))
}

func TestConditionFailed_ConditionalCheck(t *testing.T) {
	tce := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	assert.True(t, conditionFailed(tce))
}

func TestConditionFailed_OtherCancellation(t *testing.T) {
	tce := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("TransactionConflict")},
			{Code: aws.String("None")},
		},
	}
	assert.False(t, conditionFailed(tce))
}

func TestConditionFailed_NoReasons(t *testing.T) {
	assert.False(t, conditionFailed(&types.TransactionCanceledException{}))
}
