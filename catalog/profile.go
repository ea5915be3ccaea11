package catalog

import (
	"context"
	"sync"
)

// ProfileEditor drives the profile screen: fetch the current profile, seed
// the form from it, and submit updates. A blank password keeps the current
// one.
type ProfileEditor struct {
	client  *Client
	profile *Resource[User]
	form    *Form

	mu      sync.Mutex
	pending bool
}

// NewProfileEditor creates the editor backed by the "profile" resource.
func NewProfileEditor(client *Client) *ProfileEditor {
	return &ProfileEditor{
		client:  client,
		profile: NewResource("profile", client.FetchProfile),
		form:    ProfileForm(),
	}
}

// Form exposes the editor's draft.
func (e *ProfileEditor) Form() *Form { return e.form }

// Current returns the last fetched profile state.
func (e *ProfileEditor) Current() Result[User] { return e.profile.Snapshot() }

// Load fetches the profile and seeds the form from it. The password field
// always starts blank.
func (e *ProfileEditor) Load(ctx context.Context) error {
	res := e.profile.Get(ctx)
	if res.Err != nil {
		return res.Err
	}
	e.form.Reset(map[string]string{
		"name":  res.Data.Name,
		"email": res.Data.Email,
		"bio":   res.Data.Bio,
	})
	return nil
}

// Submit validates the draft and PUTs the patch; on success the profile
// resource is invalidated so the next read refetches.
func (e *ProfileEditor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return ErrMutationPending
	}
	e.pending = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.pending = false
		e.mu.Unlock()
	}()

	return e.form.Submit(func(values map[string]string) error {
		patch := ProfilePatch{
			Name:     values["name"],
			Email:    values["email"],
			Bio:      values["bio"],
			Password: values["password"],
		}
		return Mutate(ctx, func(ctx context.Context) error {
			_, err := e.client.UpdateProfile(ctx, patch)
			return err
		}, e.profile)
	})
}
