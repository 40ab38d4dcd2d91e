package tourapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   4 * time.Second,
	}
}

// DetailCommonWithRetry is DetailCommon with exponential backoff on transient failures.
func (c *Client) DetailCommonWithRetry(ctx context.Context, contentID string) (*TourDetail, error) {
	var result *TourDetail
	err := c.retryOperation(ctx, func() error {
		var err error
		result, err = c.DetailCommon(ctx, contentID)
		return err
	})
	return result, err
}

// AreaCodesWithRetry is AreaCodes with exponential backoff on transient failures.
func (c *Client) AreaCodesWithRetry(ctx context.Context, areaCode string) ([]RegionCode, error) {
	var result []RegionCode
	err := c.retryOperation(ctx, func() error {
		var err error
		result, err = c.AreaCodes(ctx, areaCode)
		return err
	})
	return result, err
}

func (c *Client) retryOperation(ctx context.Context, operation func() error) error {
	config := c.retry

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		if attempt == config.MaxRetries {
			return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, err)
		}

		delay := time.Duration(float64(config.BaseDelay) * math.Pow(1.5, float64(attempt)))
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("Retrying tourism API operation")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}

// Answers the API gave on purpose are not retried.
func retryable(err error) bool {
	if errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr)
}
