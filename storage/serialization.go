// Copyright 2025 Poiesic Systems
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

package storage

import (
	"fmt"

	"github.com/poiesic/faqmatch/core"
)

func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

func MarshalEntry(entry *core.FAQEntry) []byte {
	buf := make([]byte, core.FAQEntryMUS.Size(*entry))
	core.FAQEntryMUS.Marshal(*entry, buf)
	return buf
}

func UnmarshalEntry(data []byte) (*core.FAQEntry, error) {
	entry, _, err := core.FAQEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

func MarshalInteraction(interaction *core.Interaction) []byte {
	buf := make([]byte, core.InteractionMUS.Size(*interaction))
	core.InteractionMUS.Marshal(*interaction, buf)
	return buf
}

func UnmarshalInteraction(data []byte) (*core.Interaction, error) {
	interaction, _, err := core.InteractionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &interaction, nil
}
