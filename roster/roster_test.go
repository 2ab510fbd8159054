// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package roster

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTS = time.Date(2020, 5, 17, 12, 0, 0, 0, time.UTC)

func testRoster() *Roster {
	return New(
		WithClock(func() time.Time { return testTS }),
		WithColorFunc(func(id string) string { return "#" + id }),
	)
}

func mode(s string) *string { return &s }

func names(pp []Participant) []string {
	var ss []string
	for _, p := range pp {
		ss = append(ss, p.Name)
	}
	return ss
}

func TestRoster_order(t *testing.T) {
	tests := []struct {
		name    string
		members []Member
		want    []string
	}{
		{
			"privileges first",
			[]Member{{Name: "z", Mode: mode("")}, {Name: "a", Mode: mode("o")}, {Name: "m", Mode: mode("v")}},
			[]string{"a", "m", "z"},
		},
		{
			"case insensitive names",
			[]Member{{Nick: "bob"}, {Nick: "Alice"}, {Nick: "carol"}},
			[]string{"Alice", "bob", "carol"},
		},
		{
			"unknown modes rank as none",
			[]Member{{Nick: "b", Mode: mode("x")}, {Nick: "a"}, {Nick: "c", Mode: mode("v")}},
			[]string{"c", "a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRoster()
			for _, m := range tt.members {
				r.Merge(m)
			}
			assert.Equal(t, tt.want, names(r.List()))
		})
	}
}

func TestRoster_Merge(t *testing.T) {
	t.Run("new participant", func(t *testing.T) {
		r := testRoster()
		p := r.Merge(Member{Nick: "Bob"})
		assert.Equal(t, Participant{ID: "bob", Name: "Bob", Nick: "Bob", Color: "#bob", TS: testTS}, p)
	})
	t.Run("nick defaults to name", func(t *testing.T) {
		r := testRoster()
		p := r.Merge(Member{Name: "Bob"})
		assert.Equal(t, "bob", p.ID)
		assert.Equal(t, "Bob", p.Nick)
	})
	t.Run("preserves untouched fields", func(t *testing.T) {
		r := testRoster()
		r.Merge(Member{Name: "bob", Mode: mode("o")})
		p := r.Merge(Member{Nick: "bob", Extra: map[string]any{"away": true}})
		assert.Equal(t, "bob", p.Name)
		assert.Equal(t, "o", p.Mode)
		assert.Equal(t, map[string]any{"away": true}, p.Extra)
		assert.Equal(t, 1, r.Len())
	})
	t.Run("keys are case insensitive", func(t *testing.T) {
		r := testRoster()
		r.Merge(Member{Nick: "Bob"})
		r.Merge(Member{Nick: "BOB", Mode: mode("v")})
		assert.Equal(t, 1, r.Len())
		p, ok := r.Get("bob")
		require.True(t, ok)
		assert.Equal(t, "v", p.Mode)
		assert.Equal(t, "Bob", p.Name)
	})
	t.Run("extra fields are merged", func(t *testing.T) {
		r := testRoster()
		r.Merge(Member{Nick: "bob", Extra: map[string]any{"away": true, "host": "x"}})
		p := r.Merge(Member{Nick: "bob", Extra: map[string]any{"away": false}})
		assert.Equal(t, map[string]any{"away": false, "host": "x"}, p.Extra)
	})
}

func TestRoster_Names(t *testing.T) {
	r := testRoster()
	r.Merge(Member{Nick: "z"})
	r.Merge(Member{Nick: "a", Mode: mode(ModeOperator)})
	r.Merge(Member{Nick: "m", Mode: mode(ModeVoice)})
	assert.Equal(t, []string{"@a", "+m", "z"}, r.Names())
}

func TestRoster_Delete(t *testing.T) {
	r := testRoster()
	r.Merge(Member{Nick: "Bob"})
	assert.True(t, r.Has("BOB"))
	assert.True(t, r.Delete("bob"))
	assert.False(t, r.Has("Bob"))
	assert.False(t, r.Delete("bob"))
	assert.Equal(t, 0, r.Len())
}

func TestMember_JSON(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"nick":"bob","mode":"o","me":true,"away":true}`), &m))
	require.NotNil(t, m.Mode)
	require.NotNil(t, m.Me)
	assert.Equal(t, "bob", m.Nick)
	assert.Equal(t, "o", *m.Mode)
	assert.True(t, *m.Me)
	assert.Equal(t, map[string]any{"away": true}, m.Extra)

	var absent Member
	require.NoError(t, json.Unmarshal([]byte(`{"nick":"bob"}`), &absent))
	assert.Nil(t, absent.Mode)
	assert.Nil(t, absent.Extra)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nick":"bob","mode":"o","me":true,"away":true}`, string(data))
}
