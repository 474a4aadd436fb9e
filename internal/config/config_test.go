package config

import (
	"errors"
	"testing"
	"time"
)

// minimal valid env layer for Resolve tests
func baseEnv() Env {
	return Env{
		Weekday:     "Tuesday",
		HistoryDays: 30,
		LogLevel:    "info",
	}
}

func TestResolve_PrecedenceToken(t *testing.T) {
	env := baseEnv()
	env.Token = "xoxb-env"
	file := &FileConfig{SlackToken: "xoxb-file"}

	cfg, err := Resolve(Flags{Token: "xoxb-cli"}, env, file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Token != "xoxb-cli" {
		t.Fatalf("want CLI token, got %q", cfg.Token)
	}

	cfg, err = Resolve(Flags{}, env, file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Token != "xoxb-env" {
		t.Fatalf("want env token, got %q", cfg.Token)
	}

	env.Token = ""
	cfg, err = Resolve(Flags{}, env, file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Token != "xoxb-file" {
		t.Fatalf("want file token, got %q", cfg.Token)
	}
}

func TestResolve_MissingToken(t *testing.T) {
	_, err := Resolve(Flags{}, baseEnv(), nil)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("want ErrMissingToken, got %v", err)
	}
}

func TestResolve_Defaults(t *testing.T) {
	env := baseEnv()
	env.Token = "xoxb-env"

	cfg, err := Resolve(Flags{}, env, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Channel != DefaultChannel {
		t.Fatalf("want default channel, got %q", cfg.Channel)
	}
	if got := FormatClock(cfg.TriggerM); got != DefaultTime {
		t.Fatalf("want default time %s, got %s", DefaultTime, got)
	}
	if cfg.Weekday != time.Tuesday {
		t.Fatalf("want Tuesday, got %v", cfg.Weekday)
	}
}

func TestResolve_ChannelAndTimeOverride(t *testing.T) {
	env := baseEnv()
	env.Token = "xoxb-env"
	env.Channel = "#env-channel"
	env.Time = "10:00"

	cfg, err := Resolve(Flags{Channel: "#cli-channel", Time: "16:30"}, env, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Channel != "#cli-channel" {
		t.Fatalf("want CLI channel, got %q", cfg.Channel)
	}
	if cfg.TriggerM != 16*60+30 {
		t.Fatalf("want 16:30, got %s", FormatClock(cfg.TriggerM))
	}
}

func TestResolve_InvalidInputs(t *testing.T) {
	env := baseEnv()
	env.Token = "xoxb-env"

	if _, err := Resolve(Flags{Time: "25:00"}, env, nil); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("want ErrInvalidClock, got %v", err)
	}

	env.Weekday = "Someday"
	if _, err := Resolve(Flags{}, env, nil); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("want ErrInvalidWeekday, got %v", err)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 9 * 60, true},
		{"23:59", 23*60 + 59, true},
		{"00:00", 0, true},
		{"9:5", 9*60 + 5, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseClock(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseClock(%q): want error", c.in)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("wednesday")
	if err != nil || d != time.Wednesday {
		t.Fatalf("ParseWeekday(wednesday) = %v, %v", d, err)
	}
	if _, err := ParseWeekday("tue"); err == nil {
		t.Fatal("abbreviations are not accepted")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" admin, Eugene Gritskevich ,,eg@dubformer.ai ")
	want := []string{"admin", "Eugene Gritskevich", "eg@dubformer.ai"}
	if len(got) != len(want) {
		t.Fatalf("want %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: want %q, got %q", i, want[i], got[i])
		}
	}
}
