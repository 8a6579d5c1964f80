package router

import (
	"encoding/json"
	"testing"

	"github.com/baaaaaaaka/eledminer/internal/config"
)

func TestDecodeCommand(t *testing.T) {
	cases := []struct {
		typ     string
		payload string
		check   func(t *testing.T, c Command)
	}{
		{"NAVIGATE_HOME", "", func(t *testing.T, c Command) {}},
		{"SETTINGS_SAVE", `{"settings":{"port":8100,"theme":"nette"},"restart":true}`, func(t *testing.T, c Command) {
			if c.Settings.Port != 8100 || c.Settings.Theme != "nette" || !c.Restart {
				t.Fatalf("settings command=%#v", c)
			}
		}},
		{"OPEN_CONNECTION", `{"driver":"sqlite","name":"app","filepath":"/tmp/app.db"}`, func(t *testing.T, c Command) {
			if c.Connection.Driver != config.DriverSQLite || c.Connection.Filepath != "/tmp/app.db" {
				t.Fatalf("connection=%#v", c.Connection)
			}
		}},
		{"SAVE_EDIT_CONNECTION", `{"id":"c1","driver":"server","name":"db","hostname":"h","port":3306,"username":"u","password":"p"}`, func(t *testing.T, c Command) {
			if c.Connection.ID != "c1" || c.Connection.Port != 3306 || c.Connection.Password != "p" {
				t.Fatalf("connection=%#v", c.Connection)
			}
		}},
		{"REMOVE_CONNECTION", `"c1"`, func(t *testing.T, c Command) {
			if c.ID != "c1" {
				t.Fatalf("id=%q", c.ID)
			}
		}},
		{"OPEN_FILE_DIALOG", `{"kind":"php-executable"}`, func(t *testing.T, c Command) {
			if c.Dialog != DialogPHPExecutable {
				t.Fatalf("dialog=%q", c.Dialog)
			}
		}},
		{"VERIFY_EXECUTABLE_PATH", `"/usr/bin/php"`, func(t *testing.T, c Command) {
			if c.Path != "/usr/bin/php" {
				t.Fatalf("path=%q", c.Path)
			}
		}},
		{"VERIFY_EXECUTABLE_PATH", ``, func(t *testing.T, c Command) {
			if c.Path != "" {
				t.Fatalf("path=%q", c.Path)
			}
		}},
		{"RESIZE", `{"width":800,"height":600}`, func(t *testing.T, c Command) {
			if c.Width != 800 || c.Height != 600 {
				t.Fatalf("size=%dx%d", c.Width, c.Height)
			}
		}},
	}
	for _, tc := range cases {
		c, err := DecodeCommand(tc.typ, json.RawMessage(tc.payload))
		if err != nil {
			t.Fatalf("DecodeCommand(%s): %v", tc.typ, err)
		}
		if string(c.Type) != tc.typ {
			t.Fatalf("type=%q want %q", c.Type, tc.typ)
		}
		tc.check(t, c)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	cases := []struct{ typ, payload string }{
		{"LAUNCH_MISSILES", ""},
		{"SETTINGS_SAVE", ""},
		{"SETTINGS_SAVE", `{"settings":`},
		{"OPEN_FILE_DIALOG", `{"kind":"image"}`},
		{"REMOVE_CONNECTION", `42`},
		{"RESIZE", `null`},
	}
	for _, tc := range cases {
		if _, err := DecodeCommand(tc.typ, json.RawMessage(tc.payload)); err == nil {
			t.Fatalf("expected error for %s %q", tc.typ, tc.payload)
		}
	}
}
