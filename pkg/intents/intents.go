// Package intents names the gateway intent bits sent in Identify.
package intents

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Intent is a bitfield of gateway intents.
type Intent uint64

const (
	Guilds                      Intent = 1 << 0
	GuildMembers                Intent = 1 << 1 // privileged
	GuildModeration             Intent = 1 << 2
	GuildExpressions            Intent = 1 << 3
	GuildIntegrations           Intent = 1 << 4
	GuildWebhooks               Intent = 1 << 5
	GuildInvites                Intent = 1 << 6
	GuildVoiceStates            Intent = 1 << 7
	GuildPresences              Intent = 1 << 8 // privileged
	GuildMessages               Intent = 1 << 9
	GuildMessageReactions       Intent = 1 << 10
	GuildMessageTyping          Intent = 1 << 11
	DirectMessages              Intent = 1 << 12
	DirectMessageReactions      Intent = 1 << 13
	DirectMessageTyping         Intent = 1 << 14
	MessageContent              Intent = 1 << 15 // privileged
	GuildScheduledEvents        Intent = 1 << 16
	AutoModerationConfiguration Intent = 1 << 20
	AutoModerationExecution     Intent = 1 << 21
	GuildMessagePolls           Intent = 1 << 24
	DirectMessagePolls          Intent = 1 << 25
)

// ErrUnknown is returned by Parse for names that are not intents.
var ErrUnknown = errors.New("intents: unknown intent")

var byName = map[string]Intent{
	"GUILDS":                        Guilds,
	"GUILD_MEMBERS":                 GuildMembers,
	"GUILD_MODERATION":              GuildModeration,
	"GUILD_EXPRESSIONS":             GuildExpressions,
	"GUILD_INTEGRATIONS":            GuildIntegrations,
	"GUILD_WEBHOOKS":                GuildWebhooks,
	"GUILD_INVITES":                 GuildInvites,
	"GUILD_VOICE_STATES":            GuildVoiceStates,
	"GUILD_PRESENCES":               GuildPresences,
	"GUILD_MESSAGES":                GuildMessages,
	"GUILD_MESSAGE_REACTIONS":       GuildMessageReactions,
	"GUILD_MESSAGE_TYPING":          GuildMessageTyping,
	"DIRECT_MESSAGES":               DirectMessages,
	"DIRECT_MESSAGE_REACTIONS":      DirectMessageReactions,
	"DIRECT_MESSAGE_TYPING":         DirectMessageTyping,
	"MESSAGE_CONTENT":               MessageContent,
	"GUILD_SCHEDULED_EVENTS":        GuildScheduledEvents,
	"AUTO_MODERATION_CONFIGURATION": AutoModerationConfiguration,
	"AUTO_MODERATION_EXECUTION":     AutoModerationExecution,
	"GUILD_MESSAGE_POLLS":           GuildMessagePolls,
	"DIRECT_MESSAGE_POLLS":          DirectMessagePolls,
}

// All is every known intent.
var All = func() Intent {
	var all Intent
	for _, i := range byName {
		all |= i
	}
	return all
}()

// Privileged is the set of intents that must be enabled for the application.
const Privileged = GuildMembers | GuildPresences | MessageContent

// Unprivileged is every known intent that needs no approval.
var Unprivileged = All &^ Privileged

// Has reports whether every bit of other is set in i.
func (i Intent) Has(other Intent) bool {
	return i&other == other
}

// Names returns the names of the known bits in i, sorted by bit.
func (i Intent) Names() []string {
	type named struct {
		bit  Intent
		name string
	}
	var out []named
	for name, bit := range byName {
		if i.Has(bit) {
			out = append(out, named{bit, name})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].bit < out[b].bit })

	names := make([]string, len(out))
	for k, n := range out {
		names[k] = n.name
	}
	return names
}

// String joins Names with "|".
func (i Intent) String() string {
	if i == 0 {
		return "0"
	}
	return strings.Join(i.Names(), "|")
}

// Parse combines intent names. Names are case-insensitive, and "-" and
// spaces are accepted in place of "_". The pseudo-names ALL and
// UNPRIVILEGED expand to the corresponding sets.
func Parse(names ...string) (Intent, error) {
	var out Intent
	for _, raw := range names {
		name := strings.ToUpper(strings.TrimSpace(raw))
		name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
		switch name {
		case "":
			continue
		case "ALL":
			out |= All
			continue
		case "UNPRIVILEGED":
			out |= Unprivileged
			continue
		}
		bit, ok := byName[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknown, raw)
		}
		out |= bit
	}
	return out, nil
}
