// utilitário pequeno para formatação consistente de valores numéricos em headers e JSON.

package dispatch

import (
	"math"
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// roundSeconds converte d para segundos com 2 casas decimais.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// retryAfterSeconds arredonda para baixo, com mínimo de 1.
func retryAfterSeconds(d time.Duration) string {
	s := int(d.Seconds())
	if s < 1 {
		s = 1
	}
	return formatInt(s)
}
