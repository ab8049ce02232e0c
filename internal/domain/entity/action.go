package entity

import (
	"regexp"
)

type ActionVerb string

const (
	VerbSearch  ActionVerb = "search"
	VerbClick   ActionVerb = "click"
	VerbEnd     ActionVerb = "end"
	VerbInvalid ActionVerb = "invalid"
)

// EndButton: метка кнопки, клик по которой завершает эпизод.
const EndButton = "Buy Now"

// Verb вне скобок, аргумент это всё до последней закрывающей скобки.
var actionPattern = regexp.MustCompile(`(?s)^([^\[]+)\[(.+)\]`)

type Action struct {
	Verb ActionVerb
	Arg  string
	Raw  string
}

func Search(keywords string) Action {
	return Action{Verb: VerbSearch, Arg: keywords, Raw: "search[" + keywords + "]"}
}

func Click(label string) Action {
	return Action{Verb: VerbClick, Arg: label, Raw: "click[" + label + "]"}
}

func End() Action {
	return Action{Verb: VerbEnd, Raw: "end"}
}

func Invalid(raw string) Action {
	return Action{Verb: VerbInvalid, Raw: raw}
}

// ParseAction разбирает строку действия агента. Никогда не возвращает ошибку:
// всё, что не распознано, становится Invalid.
func ParseAction(raw string) Action {
	verb, arg := raw, ""
	hasArg := false
	if m := actionPattern.FindStringSubmatch(raw); m != nil {
		verb, arg, hasArg = m[1], m[2], true
	}

	switch ActionVerb(verb) {
	case VerbSearch:
		if hasArg {
			a := Search(arg)
			a.Raw = raw
			return a
		}
	case VerbClick:
		if hasArg {
			a := Click(arg)
			a.Raw = raw
			return a
		}
	case VerbEnd:
		a := End()
		a.Raw = raw
		return a
	}
	return Invalid(raw)
}

func (a Action) IsTerminalClick() bool {
	return a.Verb == VerbClick && a.Arg == EndButton
}

func (a Action) String() string {
	switch a.Verb {
	case VerbSearch:
		return "search[" + a.Arg + "]"
	case VerbClick:
		return "click[" + a.Arg + "]"
	case VerbEnd:
		return "end"
	default:
		return a.Raw
	}
}
