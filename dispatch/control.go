package dispatch

import "strings"

const (
	controlPath  = "/setmode"
	controlParam = "mode="
)

// parseDirective reconhece uma diretiva de controle na primeira linha.
// ok indica que a linha é de controle; token pode vir vazio quando falta
// o parâmetro mode=, e nesse caso o modo não muda.
func parseDirective(line string) (token string, ok bool) {
	i := strings.Index(line, controlPath)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(controlPath):]
	j := strings.Index(rest, controlParam)
	if j < 0 {
		return "", true
	}
	rest = rest[j+len(controlParam):]
	if end := strings.IndexAny(rest, " \t\r\n&#"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}
