package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"modastock/internal/domain"
)

// Notifier é o colaborador que recebe os alertas produzidos pelo motor de
// mutação de estoque. Este serviço apenas produz os registros; a entrega
// final (sockets, e-mail, etc.) é responsabilidade de quem consome o canal.
type Notifier interface {
	NotifyStockAlerts(ctx context.Context, alerts []domain.StockAlert) error
}

// RedisNotifier publica cada alerta como JSON em um canal Pub/Sub do Redis.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier cria o notifier apontando para o Redis já usado como cache.
func NewRedisNotifier(addr, channel string) *RedisNotifier {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// NotifyStockAlerts publica os alertas na ordem em que foram gerados.
// Uma falha de publicação não desfaz o lote já commitado — o chamador
// decide apenas logar.
func (n *RedisNotifier) NotifyStockAlerts(ctx context.Context, alerts []domain.StockAlert) error {
	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("falha ao serializar alerta do produto %d: %w", alert.ProductID, err)
		}
		if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
			return fmt.Errorf("falha ao publicar alerta do produto %d: %w", alert.ProductID, err)
		}
	}
	return nil
}
