package model

// Role is a church office that determines which dashboard a user sees.
type Role string

const (
	RoleFather        Role = "father"
	RoleMother        Role = "mother"
	RoleElder         Role = "elder"
	RoleDeacon        Role = "deacon"
	RoleSecretary     Role = "secretary"
	RoleChoirDirector Role = "choir_director"
	RoleYouthLeader   Role = "youth_leader"
	RoleMember        Role = "member"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleFather,
	RoleMother,
	RoleElder,
	RoleDeacon,
	RoleSecretary,
	RoleChoirDirector,
	RoleYouthLeader,
	RoleMember,
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks whether the role is a known value.
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
