package store

import (
	"context"
	"log"

	"github.com/dustin/go-humanize"
)

// CountingSink wraps a Sink, tallying files and bytes written and
// optionally logging each one.
type CountingSink struct {
	Sink    Sink
	Files   int
	Total   uint64
	Verbose bool
}

func (cs *CountingSink) Put(ctx context.Context, name string,
	data []byte) error {
	if err := cs.Sink.Put(ctx, name, data); err != nil {
		return err
	}
	cs.Files++
	cs.Total += uint64(len(data))
	if cs.Verbose {
		log.Printf("Wrote %s (%s)", name, humanize.Bytes(uint64(len(data))))
	}
	return nil
}

// String reports the running totals, e.g. `12 files, 3.4 MB`.
func (cs *CountingSink) String() string {
	return humanize.Comma(int64(cs.Files)) + " files, " +
		humanize.Bytes(cs.Total)
}
