package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"routeviz/pkg/domain"
)

// GraphHash вычисляет хеш снимка графа для использования в ключе кэша.
// Порядок вершин и соседей входит в хеш: от него зависят трасса и выбор при равенстве.
func GraphHash(s *domain.Snapshot) string {
	if s == nil {
		return ""
	}

	h := sha256.New()
	var buf []byte
	for i := 0; i < s.Len(); i++ {
		buf = buf[:0]
		buf = append(buf, 'v')
		buf = strconv.AppendQuote(buf, s.Name(i))
		buf = append(buf, ';')
		for _, nb := range s.Neighbors(i) {
			buf = append(buf, 'a')
			buf = strconv.AppendQuote(buf, nb.Name)
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, nb.Weight, 'g', -1, 64)
			buf = append(buf, ';')
		}
		h.Write(buf)
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// BuildSearchKey строит ключ кэша для результата поиска.
// Имена городов берутся в кавычки: они могут содержать разделитель.
func BuildSearchKey(strategy, trace, graphHash, source, target string) string {
	return strings.Join([]string{
		"search", strategy, trace, graphHash,
		strconv.Quote(source), strconv.Quote(target),
	}, ":")
}

// SearchPattern паттерн всех результатов поиска
const SearchPattern = "search:*"
