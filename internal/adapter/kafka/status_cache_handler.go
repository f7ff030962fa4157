package kafka

import (
	"context"

	"github.com/loayeid/shophub/internal/usecase"
)

// StatusCacheHandler keeps the Redis status cache warm from the status topic.
// Other instances of the API learn about transitions they did not perform.
type StatusCacheHandler struct {
	Cache usecase.OrderCache
}

func NewStatusCacheHandler(cache usecase.OrderCache) *StatusCacheHandler {
	return &StatusCacheHandler{Cache: cache}
}

func (h *StatusCacheHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	return h.Cache.SetStatus(ctx, ev.OrderID, ev.Status)
}
