// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package capture

import (
	"fmt"
	"strings"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
)

// ObjectType names a kind of captured object.
type ObjectType string

// Capturable object types. Devices are captured inside users.
const (
	Sites   ObjectType = "sites"
	Users   ObjectType = "users"
	Devices ObjectType = "devices"
	Groups  ObjectType = "groups"
)

// SelectAll selects every object type.
const SelectAll = "all"

// SupportedSelections returns every accepted selection token.
func SupportedSelections() []string {
	return []string{string(Sites), string(Users), string(Devices), string(Groups), SelectAll}
}

// Selection is the set of object types requested for a run.
type Selection struct {
	Sites   bool
	Users   bool
	Devices bool
	Groups  bool
}

// ParseSelection turns command line tokens into a Selection. Tokens are case
// insensitive and may also be comma separated. Unknown tokens are rejected.
func ParseSelection(tokens ...string) (Selection, error) {
	var s Selection
	for _, arg := range tokens {
		for _, tok := range strings.Split(arg, ",") {
			switch ObjectType(strings.ToLower(strings.TrimSpace(tok))) {
			case "":
			case Sites:
				s.Sites = true
			case Users:
				s.Users = true
			case Devices:
				s.Devices = true
			case Groups:
				s.Groups = true
			case SelectAll:
				s = Selection{Sites: true, Users: true, Devices: true, Groups: true}
			default:
				return Selection{}, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
					fmt.Sprintf("unknown object type %q, expected one of %s", tok, strings.Join(SupportedSelections(), ", ")),
					map[string]any{"token": tok})
			}
		}
	}
	if s.Empty() {
		return Selection{}, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "no object types selected")
	}
	return s, nil
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return !s.Sites && !s.Users && !s.Devices && !s.Groups
}

// CaptureUsers reports whether the users pass runs. Devices are only
// reachable through their users, so selecting devices implies the pass.
func (s Selection) CaptureUsers() bool {
	return s.Users || s.Devices
}

// Tokens returns the selected types in capture order.
func (s Selection) Tokens() []string {
	var out []string
	if s.Sites {
		out = append(out, string(Sites))
	}
	if s.Users {
		out = append(out, string(Users))
	}
	if s.Devices {
		out = append(out, string(Devices))
	}
	if s.Groups {
		out = append(out, string(Groups))
	}
	return out
}

func (s Selection) String() string {
	return strings.Join(s.Tokens(), ",")
}
