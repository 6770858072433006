// Package verify_handler runs the DM math captcha: a panel with a Verify
// button, the challenge sent by DM, and the answer that grants the verified role.
package verify_handler

import (
	"proflare/src-server/utils"
)

const (
	verifyButtonID = "verify_button"
	panelName      = "panel verify"
)

func Init(as *utils.AppState) {
	as.AddPrefixCmdHandler(panelName, panelHandler(as))
	as.AddMsgComponentHandler(verifyButtonID, buttonHandler(as))
}
