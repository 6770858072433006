// Package ticket_handler wires the suggestion and bug-report panels, their
// modals and the close command to the ticket lifecycle.
package ticket_handler

import (
	"proflare/src-server/utils"
)

const (
	suggestButtonID = "suggest_create"
	suggestModalID  = "suggest_modal"
	suggestTitleID  = "suggest_title"
	suggestDescID   = "suggest_desc"

	// followed by the bug type
	bugButtonPrefix = "bug:"
	bugModalPrefix  = "bug_modal:"
	bugTitleID      = "bug_title"
	bugDescID       = "bug_desc"
)

func Init(as *utils.AppState) {
	as.AddPrefixCmdHandler("panel suggest", suggestPanelHandler(as))
	as.AddPrefixCmdHandler("panel bug", bugPanelHandler(as))
	as.AddPrefixCmdHandler("close", closeHandler(as))

	as.AddMsgComponentHandler(suggestButtonID, suggestButtonHandler())
	as.AddMsgComponentHandler(bugButtonPrefix, bugButtonHandler(as))

	as.AddModalHandler(suggestModalID, modalSubmitHandler(as))
	as.AddModalHandler(bugModalPrefix, modalSubmitHandler(as))
}
