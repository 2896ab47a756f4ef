package section

import (
	"strings"

	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Rule turns a precondition into a metadata entry.
type Rule func(c domain.Condition, avatars ports.AvatarDirectory) domain.MetaProp

// Rules maps condition types to their rule. Conditions without a rule are
// reported with their raw type and parameters.
type Rules map[string]Rule

// DefaultRules returns the built-in precondition labels.
func DefaultRules() Rules {
	return Rules{
		"QUEST_COND_AVATAR_FETTER_GT":                friendship("is greater than"),
		"QUEST_COND_AVATAR_FETTER_LT":                friendship("is less than"),
		"QUEST_COND_AVATAR_FETTER_EQ":                friendship("equals"),
		"QUEST_COND_IS_DAYTIME":                      toggle("Daytime Only", "Nighttime Only"),
		"QUEST_COND_PLAYER_TEAM_CONTAINS_AVATAR":     avatar("Player team contains avatar"),
		"QUEST_COND_PLAYER_TEAM_NOT_CONTAINS_AVATAR": avatar("Player team does not contain avatar"),
		"QUEST_COND_PLAYER_HAVE_AVATAR":              avatar("Player owns avatar"),
		"QUEST_COND_PLAYER_CURRENT_AVATAR":           avatar("Current avatar is"),
		"QUEST_COND_PLAYER_CURRENT_NOT_AVATAR":       avatar("Current avatar is not"),
		"QUEST_COND_PLAYER_CHOOSE_MALE":              toggle("Player chose male traveler", "Player chose female traveler"),
	}
}

// Apply returns the metadata entry for c.
func (r Rules) Apply(c domain.Condition, avatars ports.AvatarDirectory) domain.MetaProp {
	if rule, ok := r[c.Type]; ok {
		return rule(c, avatars)
	}
	prop := domain.MetaProp{Label: c.Type}
	for _, p := range c.Params {
		prop.Values = append(prop.Values, domain.MetaValue{Value: p})
	}
	return prop
}

func friendship(cmp string) Rule {
	return func(c domain.Condition, avatars ports.AvatarDirectory) domain.MetaProp {
		return domain.MetaProp{
			Label: "Friendship for",
			Values: []domain.MetaValue{
				{Value: avatarName(avatars, c.Param(0)), Bold: true},
				{Value: cmp},
				{Value: c.Param(1)},
			},
		}
	}
}

func avatar(label string) Rule {
	return func(c domain.Condition, avatars ports.AvatarDirectory) domain.MetaProp {
		return domain.MetaProp{
			Label:  label,
			Values: []domain.MetaValue{{Value: avatarName(avatars, c.Param(0)), Bold: true}},
		}
	}
}

func toggle(yes, no string) Rule {
	return func(c domain.Condition, _ ports.AvatarDirectory) domain.MetaProp {
		if truthy(c.Param(0)) {
			return domain.MetaProp{Label: yes}
		}
		return domain.MetaProp{Label: no}
	}
}

func avatarName(avatars ports.AvatarDirectory, id string) string {
	if avatars != nil {
		if name, ok := avatars.AvatarName(id); ok {
			return name
		}
	}
	return id
}

func truthy(s string) bool {
	s = strings.TrimSpace(s)
	return s == "1" || strings.EqualFold(s, "true")
}
