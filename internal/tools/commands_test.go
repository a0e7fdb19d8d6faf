package tools

import "testing"

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		text   string
		name   string
		action string
	}{
		{"Tăng âm lượng lên chút", "volume_up", "set_volume"},
		{"volume up please", "volume_up", "set_volume"},
		{"giảm âm lượng đi", "volume_down", "set_volume"},
		{"bật đèn phòng khách", "light_on", "set_light"},
		{"turn off light", "light_off", "set_light"},
		{"dừng lại", "stop", "stop_speaking"},
		{"STOP", "stop", "stop_speaking"},
		{"tiếp tục kể đi", "continue", "continue_speaking"},
		{"bật quạt", "fan_on", "set_fan"},
		{"tắt quạt giùm", "fan_off", "set_fan"},
	}
	for _, tt := range tests {
		cmd := DetectCommand(tt.text)
		if cmd == nil {
			t.Errorf("DetectCommand(%q) = nil", tt.text)
			continue
		}
		if cmd.Name != tt.name || cmd.Action != tt.action {
			t.Errorf("DetectCommand(%q) = %s/%s, want %s/%s", tt.text, cmd.Name, cmd.Action, tt.name, tt.action)
		}
		if cmd.Text != tt.text {
			t.Errorf("DetectCommand(%q) kept text %q", tt.text, cmd.Text)
		}
	}
}

func TestDetectCommandValues(t *testing.T) {
	if cmd := DetectCommand("tăng âm lượng"); cmd.Value != 10 {
		t.Errorf("volume_up value %v", cmd.Value)
	}
	if cmd := DetectCommand("giảm âm lượng"); cmd.Value != -10 {
		t.Errorf("volume_down value %v", cmd.Value)
	}
	if cmd := DetectCommand("bật đèn"); cmd.Value != "on" {
		t.Errorf("light_on value %v", cmd.Value)
	}
}

func TestDetectCommandNoMatch(t *testing.T) {
	for _, text := range []string{"", "   ", "kể cho tôi một câu chuyện", "what's the weather like"} {
		if cmd := DetectCommand(text); cmd != nil {
			t.Errorf("DetectCommand(%q) = %+v, want nil", text, cmd)
		}
	}
}
