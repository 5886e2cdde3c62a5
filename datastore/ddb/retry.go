/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// throttlingCodes are API error codes worth another attempt.
var throttlingCodes = map[string]bool{
	"ThrottlingException":                    true,
	"ProvisionedThroughputExceededException": true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
}

// queryWithRetry runs a Query, retrying throttled requests with linear backoff.
func (c *collection) queryWithRetry(ctx context.Context, input *sdk.QueryInput) (*sdk.QueryOutput, error) {
	maxRetries := c.client.cfg.MaxRetries
	backoff := c.client.cfg.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := c.client.api.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("query error: %w", err)
		}

		if attempt < maxRetries {
			c.log().WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"error":   err,
			}).Warn("query throttled, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var (
		pte *types.ProvisionedThroughputExceededException
		rle *types.RequestLimitExceeded
		ise *types.InternalServerError
	)
	if stderrors.As(err, &pte) || stderrors.As(err, &rle) || stderrors.As(err, &ise) {
		return true
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return throttlingCodes[apiErr.ErrorCode()]
	}

	var retryable interface{ RetryableError() bool }
	if stderrors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}
