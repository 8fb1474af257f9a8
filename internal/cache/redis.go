package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/config"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

func InitRedis(cfg *config.Config) {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Error conectando a Redis: %v", err)
	}

	log.Println("✅ Redis OK.")
}

// =======================================================
//  Helpers JSON para usar desde los servicios
// =======================================================

// GetJSON lee una key de Redis, si existe deserializa el JSON en `dest`.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		// no existe la clave
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa `value` a JSON y lo guarda en Redis con TTL en segundos.
func SetJSON(ctx context.Context, key string, value any, ttlSeconds int) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	return client.Set(ctx, key, b, ttl).Err()
}

// Del borra keys (invalidación explícita, p.e. lista de categorías).
func Del(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// Incr incrementa un contador y devuelve el nuevo valor. Se usa como
// versión de feed por usuario: subir la versión deja huérfanas las
// páginas cacheadas sin tener que escanear keys.
func Incr(ctx context.Context, key string) (int64, error) {
	if client == nil {
		return 0, nil
	}
	return client.Incr(ctx, key).Result()
}

// GetInt64 lee un contador; si no existe devuelve 0.
func GetInt64(ctx context.Context, key string) (int64, error) {
	if client == nil {
		return 0, nil
	}
	n, err := client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// =======================================================
//  Pub/Sub (stream de artículos nuevos)
// =======================================================

// ChannelNewArticles es el canal donde se publican los artículos
// recién creados (los consume el hub de websockets).
const ChannelNewArticles = "articles:new"

// PublishJSON publica `value` serializado en un canal.
func PublishJSON(ctx context.Context, channel string, value any) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Publish(ctx, channel, b).Err()
}

// Subscribe se suscribe a un canal y devuelve el PubSub (el caller cierra).
func Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if client == nil {
		return nil
	}
	return client.Subscribe(ctx, channel)
}
