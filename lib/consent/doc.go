// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package consent asks the user to approve an action or to choose a
// password.
//
// [Askpass] runs an ssh-askpass compatible helper in confirmation mode
// (SSH_ASKPASS_PROMPT=confirm): the helper shows the message and exits
// 0 to approve, non-zero to deny. This is the same contract ssh-agent
// uses for keys added with -c, so any installed askpass dialog works.
//
// [Terminal] reads passwords from the controlling terminal with echo
// disabled. When its input is not a terminal it reads one line
// without prompting, so passwords can be piped in.
package consent
