package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Session endpoints.
const (
	endpointInitSession          = "/initSession"
	endpointKillSession          = "/killSession"
	endpointFullSession          = "/getFullSession"
	endpointMyProfiles           = "/getMyProfiles"
	endpointActiveProfile        = "/getActiveProfile"
	endpointChangeActiveProfile  = "/changeActiveProfile"
	endpointMyEntities           = "/getMyEntities"
	endpointActiveEntities       = "/getActiveEntities"
	endpointChangeActiveEntities = "/changeActiveEntities"
	endpointGlpiConfig           = "/getGlpiConfig"
	endpointLostPassword         = "/lostPassword"
)

// decodeSession rejects a success body without a token, so that a session
// is never set to an empty value.
func decodeSession(statusCode int, body []byte) (glpi.Session, error) {
	session, err := glpi.DecodeJSON[glpi.Session](statusCode, body)
	if err != nil {
		return session, err
	}

	if session.SessionToken == "" {
		return session, ErrMissingSessionToken
	}

	return session, nil
}

// InitByToken implements glpi.SessionClient.InitByToken.
func (c *Client) InitByToken(ctx context.Context, userToken string) glpi.Outcome[glpi.Session] {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	state := c.snapshot()

	outcome := send(ctx, c, state, call[glpi.Session]{
		method:      http.MethodGet,
		endpoint:    endpointInitSession,
		path:        endpointInitSession,
		headers:     map[string]string{glpi.HeaderAuthorization: glpi.UserTokenAuthorization(userToken)},
		sessionless: true,
		decode:      decodeSession,
	})

	if outcome.IsSuccess() {
		state.SessionToken = outcome.Value.SessionToken
		c.setState(state)
	}

	return outcome
}

// InitByCredentials implements glpi.SessionClient.InitByCredentials.
// The login is sent without App-Token and a successful login drops any
// application token held before.
func (c *Client) InitByCredentials(ctx context.Context, user, password string) glpi.Outcome[glpi.Session] {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	outcome := send(ctx, c, glpi.SessionState{}, call[glpi.Session]{
		method:      http.MethodGet,
		endpoint:    endpointInitSession,
		path:        endpointInitSession,
		headers:     map[string]string{glpi.HeaderAuthorization: glpi.BasicAuthorization(user, password)},
		sessionless: true,
		decode:      decodeSession,
	})

	if outcome.IsSuccess() {
		c.setState(glpi.SessionState{SessionToken: outcome.Value.SessionToken})
	}

	return outcome
}

// FullSession implements glpi.SessionClient.FullSession. Only sessionToken
// authenticates the call: the stored session and App-Token are not used,
// and an empty sessionToken is sent as is.
func (c *Client) FullSession(ctx context.Context, sessionToken string) glpi.Outcome[glpi.FullSession] {
	return send(ctx, c, glpi.SessionState{SessionToken: sessionToken}, call[glpi.FullSession]{
		method:   http.MethodGet,
		endpoint: endpointFullSession,
		path:     endpointFullSession,
		headers:  map[string]string{glpi.HeaderReferer: constants.FullSessionReferer},
		decode:   glpi.DecodeFullSession,
	})
}

// KillSession implements glpi.SessionClient.KillSession. The stored state is
// cleared only once the server confirmed the logout.
func (c *Client) KillSession(ctx context.Context) glpi.Outcome[glpi.Confirmation] {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	outcome := send(ctx, c, c.snapshot(), call[glpi.Confirmation]{
		method:   http.MethodGet,
		endpoint: endpointKillSession,
		path:     endpointKillSession,
		decode:   glpi.DecodeConfirmation,
	})

	if outcome.IsSuccess() {
		c.setState(glpi.SessionState{})
	}

	return outcome
}

// ChangeActiveProfile implements glpi.SessionClient.ChangeActiveProfile.
func (c *Client) ChangeActiveProfile(ctx context.Context, profileID string) glpi.Outcome[glpi.Confirmation] {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	return send(ctx, c, c.snapshot(), call[glpi.Confirmation]{
		method:   http.MethodPost,
		endpoint: endpointChangeActiveProfile,
		path:     endpointChangeActiveProfile,
		body:     map[string]any{"profiles_id": profileID},
		decode:   glpi.DecodeConfirmation,
	})
}

// ChangeActiveEntities implements glpi.SessionClient.ChangeActiveEntities.
func (c *Client) ChangeActiveEntities(ctx context.Context, entityID string, recursive bool) glpi.Outcome[glpi.Confirmation] {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	return send(ctx, c, c.snapshot(), call[glpi.Confirmation]{
		method:   http.MethodPost,
		endpoint: endpointChangeActiveEntities,
		path:     endpointChangeActiveEntities,
		body:     map[string]any{"entities_id": entityID, "is_recursive": recursive},
		decode:   glpi.DecodeConfirmation,
	})
}

// RecoverPassword implements glpi.SessionClient.RecoverPassword.
func (c *Client) RecoverPassword(ctx context.Context, email string) glpi.Outcome[glpi.Confirmation] {
	return send(ctx, c, c.snapshot(), call[glpi.Confirmation]{
		method:      http.MethodPut,
		endpoint:    endpointLostPassword,
		path:        endpointLostPassword,
		body:        map[string]any{"email": email},
		sessionless: true,
		decode:      glpi.DecodeConfirmation,
	})
}

// ResetPassword implements glpi.SessionClient.ResetPassword.
func (c *Client) ResetPassword(ctx context.Context, email, token, newPassword string) glpi.Outcome[glpi.Confirmation] {
	return send(ctx, c, c.snapshot(), call[glpi.Confirmation]{
		method:   http.MethodPut,
		endpoint: endpointLostPassword,
		path:     endpointLostPassword,
		body: map[string]any{
			"email":                 email,
			"password_forget_token": token,
			"password":              newPassword,
		},
		sessionless: true,
		decode:      glpi.DecodeConfirmation,
	})
}

// GetMyProfiles implements glpi.ProfileClient.GetMyProfiles.
func (c *Client) GetMyProfiles(ctx context.Context) glpi.Outcome[glpi.Record] {
	return get(ctx, c, endpointMyProfiles, endpointMyProfiles, nil, glpi.DecodeJSON[glpi.Record])
}

// GetActiveProfile implements glpi.ProfileClient.GetActiveProfile.
func (c *Client) GetActiveProfile(ctx context.Context) glpi.Outcome[glpi.Record] {
	return get(ctx, c, endpointActiveProfile, endpointActiveProfile, nil, glpi.DecodeJSON[glpi.Record])
}

// GetMyEntities implements glpi.ProfileClient.GetMyEntities.
func (c *Client) GetMyEntities(ctx context.Context) glpi.Outcome[glpi.Record] {
	return get(ctx, c, endpointMyEntities, endpointMyEntities, nil, glpi.DecodeJSON[glpi.Record])
}

// GetActiveEntities implements glpi.ProfileClient.GetActiveEntities.
func (c *Client) GetActiveEntities(ctx context.Context) glpi.Outcome[glpi.Record] {
	return get(ctx, c, endpointActiveEntities, endpointActiveEntities, nil, glpi.DecodeJSON[glpi.Record])
}

// GetGlpiConfig implements glpi.ProfileClient.GetGlpiConfig.
func (c *Client) GetGlpiConfig(ctx context.Context) glpi.Outcome[glpi.Record] {
	return get(ctx, c, endpointGlpiConfig, endpointGlpiConfig, nil, glpi.DecodeJSON[glpi.Record])
}
