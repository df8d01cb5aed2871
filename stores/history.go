package stores

import (
	"context"
	"slices"
)

// HistoryLimit caps how many viewed products are remembered.
const HistoryLimit = 10

// History remembers recently viewed products per client, most recent first.
type History struct {
	kv KV
}

func NewHistory(kv KV) *History { return &History{kv: kv} }

func historyKey(clientID string) string { return "history:" + clientID }

func (h *History) List(ctx context.Context, clientID string) ([]uint, error) {
	ids := []uint{}
	if err := load(ctx, h.kv, historyKey(clientID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Record moves productID to the front of the history.
func (h *History) Record(ctx context.Context, clientID string, productID uint) ([]uint, error) {
	ids, err := h.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ids = slices.DeleteFunc(ids, func(id uint) bool { return id == productID })
	ids = append([]uint{productID}, ids...)
	if len(ids) > HistoryLimit {
		ids = ids[:HistoryLimit]
	}
	return ids, save(ctx, h.kv, historyKey(clientID), ids)
}

func (h *History) Clear(ctx context.Context, clientID string) error {
	return h.kv.Delete(ctx, historyKey(clientID))
}
