package domain

import (
	"fmt"
	"strings"
)

// Mode é a disciplina de escalonamento simulada. Cada modo é apenas uma
// distribuição de tempo de serviço; nenhuma preempção real acontece.
type Mode int32

const (
	ModeFIFO Mode = iota
	ModeRoundRobin
	ModePriority
)

// Modes lista os modos conhecidos na ordem de declaração.
var Modes = []Mode{ModeFIFO, ModeRoundRobin, ModePriority}

func (m Mode) String() string {
	switch m {
	case ModeFIFO:
		return "FIFO"
	case ModeRoundRobin:
		return "RR"
	case ModePriority:
		return "PRIORITY"
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
}

// Valid informa se m é um dos modos declarados.
func (m Mode) Valid() bool {
	return m >= ModeFIFO && m <= ModePriority
}

// ParseMode aceita FIFO, RR, ROUND_ROBIN e PRIORITY sem diferenciar maiúsculas.
// Qualquer outro valor retorna ErrInvalidMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIFO":
		return ModeFIFO, nil
	case "RR", "ROUND_ROBIN":
		return ModeRoundRobin, nil
	case "PRIORITY":
		return ModePriority, nil
	}
	return ModeFIFO, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int32(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
