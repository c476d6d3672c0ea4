package neows

import (
	"context"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// FeedExtractor pages the NeoWs feed over a fixed date window in chunks of at
// most chunkDays. It implements the pipeline's BatchExtractor: an empty batch
// with a nil error means the window is exhausted.
type FeedExtractor struct {
	client    *Client
	cursor    time.Time
	stop      time.Time
	chunkDays int
	buffer    []domain.RawRecord
}

// NewFeedExtractor creates an extractor over [start, stop] inclusive.
func NewFeedExtractor(client *Client, start, stop time.Time, chunkDays int) *FeedExtractor {
	return &FeedExtractor{
		client:    client,
		cursor:    start,
		stop:      stop,
		chunkDays: chunkDays,
	}
}

// ExtractBatch returns up to batchSize raw records, fetching the next window
// chunk when the buffer runs dry.
func (e *FeedExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error) {
	for len(e.buffer) == 0 && !e.cursor.After(e.stop) {
		chunkStop := e.cursor.AddDate(0, 0, e.chunkDays-1)
		if chunkStop.After(e.stop) {
			chunkStop = e.stop
		}

		records, err := e.client.FetchFeed(ctx, e.cursor, chunkStop)
		if err != nil {
			return nil, err
		}
		e.cursor = chunkStop.AddDate(0, 0, 1)
		e.buffer = append(e.buffer, records...)
	}

	if len(e.buffer) == 0 {
		return nil, nil
	}

	n := batchSize
	if n > len(e.buffer) {
		n = len(e.buffer)
	}
	batch := e.buffer[:n]
	e.buffer = e.buffer[n:]
	return batch, nil
}
