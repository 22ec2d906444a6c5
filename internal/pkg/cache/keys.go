package cache

import "fmt"

// Chaves de cache compartilhadas entre os repositórios. O motor de mutação
// precisa invalidar a mesma chave que a leitura do catálogo popula.
const productKeyFormat = "product:%d"

// ProductKey devolve a chave de cache do produto.
func ProductKey(id int64) string {
	return fmt.Sprintf(productKeyFormat, id)
}
