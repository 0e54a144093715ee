package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrPartialSplit record เดิมถูกปิดแล้ว แต่ record ต่อเนื่องยังบันทึกไม่ครบ
	ErrPartialSplit = errors.New("split session partially persisted")
)

func wrapPartial(err error) error {
	return fmt.Errorf("%w: %v", ErrPartialSplit, err)
}
