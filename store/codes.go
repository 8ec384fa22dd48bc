package store

import (
	"context"
	"fmt"
	"time"
)

// Code prefixes per entity type.
const (
	CodePrefixCustomer    = "KH"
	CodePrefixVehicle     = "XE"
	CodePrefixCategory    = "DM"
	CodePrefixItem        = "PT"
	CodePrefixService     = "DV"
	CodePrefixQuotation   = "BG"
	CodePrefixRepairOrder = "SC"
	CodePrefixInvoice     = "HD"
)

// NextCode builds the next business code for an entity type from a live
// count: prefix + zero-padded sequence, e.g. KH0001. Uniqueness is
// best-effort, the sequence is derived from a count rather than a reserved
// transactional sequence, so two devices creating against a shared remote
// can collide.
func NextCode[T any](ctx context.Context, s *Store, prefix string) (string, error) {
	count, err := Count[T](ctx, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// NextStampedCode is NextCode with a YYMM stamp for time-sensitive
// documents, e.g. BG2608-0001.
func NextStampedCode[T any](ctx context.Context, s *Store, prefix string, now time.Time) (string, error) {
	count, err := Count[T](ctx, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s-%04d", prefix, now.Format("0601"), count+1), nil
}
