package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeCommand builds a Command from a wire frame type and its JSON payload.
func DecodeCommand(typ string, payload json.RawMessage) (Command, error) {
	cmd := Command{Type: CommandType(strings.TrimSpace(typ))}
	decode := func(v any) error {
		if len(payload) == 0 || string(payload) == "null" {
			return fmt.Errorf("%s: missing payload", cmd.Type)
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return fmt.Errorf("%s: decode payload: %w", cmd.Type, err)
		}
		return nil
	}

	switch cmd.Type {
	case CmdNavigateHome, CmdNavigateSettings, CmdSettingsLoaded, CmdSettingsCancel,
		CmdHomeLoaded, CmdOpenAdminerHome, CmdServerStatus:
		return cmd, nil
	case CmdSettingsSave:
		var p SettingsSavePayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		cmd.Settings, cmd.Restart = p.Settings, p.Restart
	case CmdOpenConnection, CmdSaveNewConnection, CmdSaveEditConnection:
		if err := decode(&cmd.Connection); err != nil {
			return Command{}, err
		}
	case CmdRemoveConnection:
		if err := decode(&cmd.ID); err != nil {
			return Command{}, err
		}
	case CmdOpenFileDialog:
		var p FileDialogPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if !p.Kind.Valid() {
			return Command{}, fmt.Errorf("%s: unknown dialog kind %q", cmd.Type, p.Kind)
		}
		cmd.Dialog = p.Kind
	case CmdVerifyExecutablePath:
		if len(payload) > 0 && string(payload) != "null" {
			if err := decode(&cmd.Path); err != nil {
				return Command{}, err
			}
		}
	case CmdResize:
		var p ResizePayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		cmd.Width, cmd.Height = p.Width, p.Height
	default:
		return Command{}, fmt.Errorf("unknown command %q", typ)
	}
	return cmd, nil
}
