package dashboard

import "github.com/alfredjeanlab/flock/internal/model"

// publicCollections are readable by every role.
var publicCollections = []model.Collection{
	model.CollectionBlog,
	model.CollectionSong,
	model.CollectionGallery,
	model.CollectionResource,
	model.CollectionTestimony,
}

// DefaultCapabilities returns the built-in grants for role. Unknown roles
// get the member set.
func DefaultCapabilities(role model.Role) []Capability {
	switch role {
	case model.RoleFather, model.RoleElder:
		return []Capability{Wildcard + ":" + Wildcard}
	case model.RoleMother:
		return grant(
			full(model.CollectionBlog, model.CollectionGallery, model.CollectionTestimony),
			view(model.CollectionSong, model.CollectionMeeting, model.CollectionResource, model.CollectionMember),
		)
	case model.RoleDeacon:
		return grant(
			full(model.CollectionResource, model.CollectionGallery),
			view(model.CollectionBlog, model.CollectionSong, model.CollectionMeeting,
				model.CollectionMember, model.CollectionTestimony, model.CollectionSabbathReport),
		)
	case model.RoleSecretary:
		return grant(
			full(model.CollectionMeeting, model.CollectionMember, model.CollectionSabbathReport),
			view(publicCollections...),
		)
	case model.RoleChoirDirector:
		return grant(
			full(model.CollectionSong),
			view(model.CollectionBlog, model.CollectionGallery, model.CollectionResource, model.CollectionTestimony),
		)
	case model.RoleYouthLeader:
		return grant(
			full(model.CollectionBlog, model.CollectionGallery, model.CollectionTestimony),
			view(model.CollectionSong, model.CollectionResource),
		)
	default:
		return grant(
			view(publicCollections...),
			[]Capability{NewCapability(model.CollectionTestimony, ActionCreate)},
		)
	}
}

func full(cs ...model.Collection) []Capability {
	out := make([]Capability, 0, len(cs))
	for _, c := range cs {
		out = append(out, Capability(string(c)+":"+Wildcard))
	}
	return out
}

func view(cs ...model.Collection) []Capability {
	out := make([]Capability, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCapability(c, ActionView))
	}
	return out
}

func grant(sets ...[]Capability) []Capability {
	var out []Capability
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
