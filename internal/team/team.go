// Package team define o conjunto fechado de organizações do LCS e a
// resolução de apelidos digitados no chat para uma identidade.
package team

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Team é a identidade de uma organização. Comparação por valor.
type Team int

const (
	Unknown Team = iota
	TSM
	TL
	Thieves
	DIG
	C9
	FLY
	GG
	CLG
	IMT
	EG
)

// All lista os times válidos na ordem de exibição.
var All = []Team{TSM, TL, Thieves, DIG, C9, FLY, GG, CLG, IMT, EG}

var names = map[Team]string{
	Unknown: "Unknown",
	TSM:     "TSM",
	TL:      "TL",
	Thieves: "100T",
	DIG:     "DIG",
	C9:      "C9",
	FLY:     "FLY",
	GG:      "GG",
	CLG:     "CLG",
	IMT:     "IMT",
	EG:      "EG",
}

// aliases já em case-fold; o nome de exibição de cada time também resolve.
var aliases = map[string]Team{
	"tsm": TSM, "teamsolomid": TSM,
	"tl": TL, "liquid": TL, "teamliquid": TL,
	"100t": Thieves, "100": Thieves, "100thieves": Thieves, "10t": Thieves, "thieves": Thieves,
	"dig": DIG, "dignitas": DIG,
	"c9": C9, "cl9": C9, "cloud9": C9, "cloudnine": C9,
	"fly": FLY, "flyq": FLY, "flyquest": FLY,
	"gg": GG, "ggs": GG, "golden": GG, "goldenguardians": GG,
	"clg": CLG, "counter": CLG, "counterlogic": CLG, "counterlogicgaming": CLG,
	"imt": IMT, "immortals": IMT,
	"eg": EG, "evil": EG, "geniuses": EG, "evilgeniuses": EG,
}

var folder = cases.Fold()

// Parse resolve um apelido livre (sem diferenciar maiúsculas, ignorando
// espaços nas pontas). Entrada desconhecida retorna Unknown.
func Parse(text string) Team {
	key := folder.String(strings.TrimSpace(text))
	if t, ok := aliases[key]; ok {
		return t
	}
	return Unknown
}

// Aliases retorna todos os apelidos aceitos por Parse.
func Aliases() []string {
	out := make([]string, 0, len(aliases))
	for a := range aliases {
		out = append(out, a)
	}
	return out
}

func (t Team) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return names[Unknown]
}

func (t Team) Valid() bool { return t != Unknown && names[t] != "" }

// MarshalText expõe o nome de exibição em JSON e eventos.
func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Team) UnmarshalText(b []byte) error {
	p := Parse(string(b))
	if p == Unknown {
		return fmt.Errorf("unknown team %q", string(b))
	}
	*t = p
	return nil
}
