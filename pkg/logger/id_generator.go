package logger

import (
	"context"

	"github.com/segmentio/ksuid"
)

type IDGenerator interface {
	NewLogID(ctx context.Context) LogID
}

// ksuidGenerator takes log ids from the random payload of a fresh ksuid, the
// same source request ids come from.
type ksuidGenerator struct{}

var _ IDGenerator = ksuidGenerator{}

func (ksuidGenerator) NewLogID(context.Context) LogID {
	var sid LogID
	for !sid.IsValid() {
		copy(sid[:], ksuid.New().Payload())
	}
	return sid
}

func defaultIDGenerator() IDGenerator {
	return ksuidGenerator{}
}
