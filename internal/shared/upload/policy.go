package upload

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type not allowed")
)

// File is one user-supplied attachment held in memory until it is forwarded
// upstream. Attachments are capped well below the multipart memory limit.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// Rejected pairs a dropped file with the reason it was dropped.
type Rejected struct {
	Name   string
	Reason string
}

// Policy bounds what a form accepts per file.
type Policy struct {
	MaxSize      int64
	AllowedTypes []string
}

// Check validates a single file against the policy.
func (p Policy) Check(file File) error {
	if p.MaxSize > 0 && file.Size > p.MaxSize {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrFileTooLarge, file.Name, file.Size, p.MaxSize)
	}
	if len(p.AllowedTypes) == 0 {
		return nil
	}
	contentType := strings.ToLower(strings.TrimSpace(file.ContentType))
	for _, allowed := range p.AllowedTypes {
		if contentType == allowed {
			return nil
		}
		// "image/*" style wildcard
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok && strings.HasPrefix(contentType, prefix+"/") {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, file.Name, file.ContentType)
}

// Screen splits a selection into accepted files and rejections. Rejected
// files are dropped from the selection and reported by name; accepted files
// keep their order and duplicates are left alone.
func (p Policy) Screen(files []File) (accepted []File, rejected []Rejected) {
	for _, file := range files {
		if err := p.Check(file); err != nil {
			rejected = append(rejected, Rejected{Name: file.Name, Reason: reasonFor(err)})
			continue
		}
		accepted = append(accepted, file)
	}
	return accepted, rejected
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "too large"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported type"
	default:
		return err.Error()
	}
}
