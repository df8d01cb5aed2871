package stores

import (
	"context"
	"slices"
)

// Wishlist keeps a set of product ids per client, newest first.
type Wishlist struct {
	kv KV
}

func NewWishlist(kv KV) *Wishlist { return &Wishlist{kv: kv} }

func wishlistKey(clientID string) string { return "wishlist:" + clientID }

func (w *Wishlist) List(ctx context.Context, clientID string) ([]uint, error) {
	ids := []uint{}
	if err := load(ctx, w.kv, wishlistKey(clientID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Toggle adds productID when absent and removes it when present.
func (w *Wishlist) Toggle(ctx context.Context, clientID string, productID uint) (added bool, ids []uint, err error) {
	ids, err = w.List(ctx, clientID)
	if err != nil {
		return false, nil, err
	}
	if i := slices.Index(ids, productID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append([]uint{productID}, ids...)
		added = true
	}
	return added, ids, save(ctx, w.kv, wishlistKey(clientID), ids)
}

func (w *Wishlist) Remove(ctx context.Context, clientID string, productID uint) ([]uint, error) {
	ids, err := w.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ids = slices.DeleteFunc(ids, func(id uint) bool { return id == productID })
	return ids, save(ctx, w.kv, wishlistKey(clientID), ids)
}

func (w *Wishlist) Clear(ctx context.Context, clientID string) error {
	return w.kv.Delete(ctx, wishlistKey(clientID))
}
