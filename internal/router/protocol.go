package router

import "github.com/baaaaaaaka/eledminer/internal/config"

type CommandType string

const (
	CmdNavigateHome         CommandType = "NAVIGATE_HOME"
	CmdNavigateSettings     CommandType = "NAVIGATE_SETTINGS"
	CmdSettingsLoaded       CommandType = "SETTINGS_LOADED"
	CmdSettingsSave         CommandType = "SETTINGS_SAVE"
	CmdSettingsCancel       CommandType = "SETTINGS_CANCEL"
	CmdHomeLoaded           CommandType = "HOME_LOADED"
	CmdOpenConnection       CommandType = "OPEN_CONNECTION"
	CmdSaveNewConnection    CommandType = "SAVE_NEW_CONNECTION"
	CmdSaveEditConnection   CommandType = "SAVE_EDIT_CONNECTION"
	CmdRemoveConnection     CommandType = "REMOVE_CONNECTION"
	CmdOpenAdminerHome      CommandType = "OPEN_ADMINER_HOME"
	CmdOpenFileDialog       CommandType = "OPEN_FILE_DIALOG"
	CmdVerifyExecutablePath CommandType = "VERIFY_EXECUTABLE_PATH"
	CmdResize               CommandType = "RESIZE"
	CmdServerStatus         CommandType = "SERVER_STATUS"
)

type ReplyType string

const (
	ReplySettingsLoaded           ReplyType = "SETTINGS_LOADED_REPLY"
	ReplySettingsLoadedFailure    ReplyType = "SETTINGS_LOADED_FAILURE"
	ReplySettingsSaveSuccess      ReplyType = "SETTINGS_SAVE_SUCCESS"
	ReplySettingsSaveFailure      ReplyType = "SETTINGS_SAVE_FAILURE"
	ReplyHomeLoaded               ReplyType = "HOME_LOADED_REPLY"
	ReplyHomeLoadedFailure        ReplyType = "HOME_LOADED_FAILURE"
	ReplyOpenConnectionFailure    ReplyType = "OPEN_CONNECTION_FAILURE"
	ReplyOpenConnectionComplete   ReplyType = "OPEN_CONNECTION_COMPLETE"
	ReplySaveNewConnectionSuccess ReplyType = "SAVE_NEW_CONNECTION_SUCCESS"
	ReplySaveNewConnectionFailure ReplyType = "SAVE_NEW_CONNECTION_FAILURE"
	ReplySaveEditSuccess          ReplyType = "SAVE_EDIT_CONNECTION_SUCCESS"
	ReplySaveEditFailure          ReplyType = "SAVE_EDIT_CONNECTION_FAILURE"
	ReplyRemoveSuccess            ReplyType = "REMOVE_CONNECTION_SUCCESS"
	ReplyRemoveFailure            ReplyType = "REMOVE_CONNECTION_FAILURE"
	ReplyFileDialogSuccess        ReplyType = "FILE_DIALOG_SUCCESS"
	ReplyFileDialogFailure        ReplyType = "FILE_DIALOG_FAILURE"
	ReplyVerifySuccess            ReplyType = "VERIFY_EXECUTABLE_PATH_SUCCESS"
	ReplyServerNotRunning         ReplyType = "PHP_SERVER_NOT_RUNNING"
	ReplyServerStatus             ReplyType = "SERVER_STATUS_REPLY"

	// Events are published to every front-end rather than to one requester.
	EventRegionsChanged  ReplyType = "REGIONS_CHANGED"
	EventContentNavigate ReplyType = "CONTENT_NAVIGATED"
	EventServerState     ReplyType = "SERVER_STATE"
)

type DialogKind string

const (
	DialogSQLite        DialogKind = "sqlite"
	DialogPHPExecutable DialogKind = "php-executable"
)

func (k DialogKind) Valid() bool {
	return k == DialogSQLite || k == DialogPHPExecutable
}

// Command is one request from a front-end. Only the fields its Type uses are
// set.
type Command struct {
	Type       CommandType
	Settings   config.Settings
	Restart    bool
	Connection config.Connection
	ID         string
	Dialog     DialogKind
	Path       string
	Width      int
	Height     int
}

type Reply struct {
	Type    ReplyType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type Sink interface {
	Send(Reply)
}

type SinkFunc func(Reply)

func (f SinkFunc) Send(r Reply) { f(r) }

// Discard drops every reply.
var Discard Sink = SinkFunc(func(Reply) {})

type SettingsSavePayload struct {
	Settings config.Settings `json:"settings"`
	Restart  bool            `json:"restart"`
}

type FileDialogPayload struct {
	Kind DialogKind `json:"kind"`
	Path string     `json:"path,omitempty"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ServerStatus struct {
	State   string `json:"state"`
	BaseURL string `json:"baseUrl"`
	Error   string `json:"error,omitempty"`
}
