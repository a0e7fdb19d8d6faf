package tools

import (
	"regexp"
	"strings"
)

// Command is a device control directive detected straight from the
// utterance, short-circuiting the reasoning provider entirely.
type Command struct {
	Name   string `json:"command"`
	Action string `json:"action"`
	Value  any    `json:"value"`
	Text   string `json:"text"`
}

type commandDef struct {
	name     string
	action   string
	value    any
	patterns []*regexp.Regexp
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Ordered: first match wins.
var commandDefs = []commandDef{
	{"volume_up", "set_volume", 10, compile(
		`tăng âm lượng`, `to lên`, `lớn tiếng`, `to hơn`,
		`volume up`, `louder`, `increase volume`,
	)},
	{"volume_down", "set_volume", -10, compile(
		`giảm âm lượng`, `nhỏ lại`, `nhỏ tiếng`, `nhỏ hơn`,
		`volume down`, `quieter`, `decrease volume`,
	)},
	{"light_on", "set_light", "on", compile(
		`bật đèn`, `mở đèn`, `sáng đèn`,
		`turn on light`, `lights? on`, `switch on`,
	)},
	{"light_off", "set_light", "off", compile(
		`tắt đèn`, `đèn tắt`, `tối đèn`,
		`turn off light`, `lights? off`, `switch off`,
	)},
	{"stop", "stop_speaking", true, compile(
		`dừng lại`, `im đi`, `thôi`, `ngừng`,
		`stop`, `pause`, `be quiet`, `shut up`,
	)},
	{"continue", "continue_speaking", true, compile(
		`tiếp tục`, `nói tiếp`, `kể tiếp`,
		`continue`, `go on`, `keep going`,
	)},
	{"fan_on", "set_fan", "on", compile(
		`bật quạt`, `mở quạt`,
		`turn on fan`, `fan on`,
	)},
	{"fan_off", "set_fan", "off", compile(
		`tắt quạt`, `quạt tắt`,
		`turn off fan`, `fan off`,
	)},
}

// DetectCommand returns the first device command matching the text, or
// nil when the utterance is ordinary conversation.
func DetectCommand(text string) *Command {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}
	for _, def := range commandDefs {
		for _, re := range def.patterns {
			if re.MatchString(lower) {
				return &Command{
					Name:   def.name,
					Action: def.action,
					Value:  def.value,
					Text:   text,
				}
			}
		}
	}
	return nil
}
