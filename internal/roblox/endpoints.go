// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package roblox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/models"
)

// Wire types for the upstream response shapes. Only the fields the
// pipeline consumes are declared.

type wireUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Created     string `json:"created"`
	IsBanned    bool   `json:"isBanned"`
	HasVerified bool   `json:"hasVerifiedBadge"`
}

type wireBadgePage struct {
	NextPageCursor string `json:"nextPageCursor"`
	Data           []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Awarder     struct {
			ID int64 `json:"id"`
		} `json:"awarder"`
	} `json:"data"`
}

type wireGroupRoles struct {
	Data []struct {
		Group struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			MemberCount int    `json:"memberCount"`
		} `json:"group"`
	} `json:"data"`
}

type wireUsernameLookup struct {
	Data []struct {
		RequestedUsername string `json:"requestedUsername"`
		ID                int64  `json:"id"`
		Name              string `json:"name"`
		DisplayName       string `json:"displayName"`
	} `json:"data"`
}

type wireUserSearch struct {
	Data []struct {
		ID                int64    `json:"id"`
		Name              string   `json:"name"`
		DisplayName       string   `json:"displayName"`
		PreviousUsernames []string `json:"previousUsernames"`
	} `json:"data"`
}

type wireThumbnailBatch struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// ResolvedUser is one entry from username resolution or user search.
type ResolvedUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// trace records one upstream call into diag when diag is non-nil.
func trace(diag *models.Diagnostics, label, rawURL string, res Result) {
	if diag == nil {
		return
	}
	t := models.FetchTrace{
		Label:      label,
		URL:        rawURL,
		Status:     res.Status,
		OK:         res.OK,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		t.Error = res.Err.Error()
		diag.AddError(t)
		return
	}
	diag.AddRequest(t)
}

// UserProfile fetches the account metadata for userID.
func (c *Client) UserProfile(ctx context.Context, diag *models.Diagnostics, userID int64) (*models.Profile, error) {
	rawURL := fmt.Sprintf("%s/v1/users/%d", c.cfg.UsersURL, userID)
	res := c.Fetch(ctx, rawURL)
	trace(diag, "user_profile", rawURL, res)
	if !res.OK {
		return nil, classify("user_profile", res)
	}

	var user wireUser
	if err := json.Unmarshal(res.Data, &user); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "user_profile", err)
	}

	profile := &models.Profile{
		ID:               user.ID,
		Name:             user.Name,
		DisplayName:      user.DisplayName,
		Description:      user.Description,
		IsBanned:         user.IsBanned,
		HasVerifiedBadge: user.HasVerified,
	}
	if created, err := time.Parse(time.RFC3339, user.Created); err == nil {
		profile.Created = created
	}
	return profile, nil
}

// UserBadges fetches the user's badges newest-first, paginating until the
// cursor runs out or the configured cap is reached.
func (c *Client) UserBadges(ctx context.Context, diag *models.Diagnostics, userID int64) ([]models.Badge, error) {
	var badges []models.Badge
	cursor := ""

	for len(badges) < c.cfg.BadgeMax {
		rawURL := fmt.Sprintf("%s/v1/users/%d/badges?limit=%d&sortOrder=Desc",
			c.cfg.BadgesURL, userID, c.cfg.BadgePageLimit)
		if cursor != "" {
			rawURL += "&cursor=" + url.QueryEscape(cursor)
		}

		res := c.Fetch(ctx, rawURL)
		trace(diag, "user_badges", rawURL, res)
		if !res.OK {
			// A failed page after successful pages degrades to a partial list.
			if len(badges) > 0 {
				logging.Ctx(ctx).Warn().
					Int64("user_id", userID).
					Int("badges", len(badges)).
					Err(res.Err).
					Msg("badge pagination stopped early")
				return badges, nil
			}
			return nil, classify("user_badges", res)
		}

		var page wireBadgePage
		if err := json.Unmarshal(res.Data, &page); err != nil {
			return nil, models.NewClassifiedError(models.ClassParseCorrupt, "user_badges", err)
		}

		for _, b := range page.Data {
			badges = append(badges, models.Badge{
				ID:          b.ID,
				Name:        b.Name,
				Description: b.Description,
				AwarderID:   b.Awarder.ID,
			})
			if len(badges) >= c.cfg.BadgeMax {
				break
			}
		}

		if page.NextPageCursor == "" {
			break
		}
		cursor = page.NextPageCursor
	}

	return badges, nil
}

// UserGroups fetches the user's group memberships.
func (c *Client) UserGroups(ctx context.Context, diag *models.Diagnostics, userID int64) ([]models.Group, error) {
	rawURL := fmt.Sprintf("%s/v2/users/%d/groups/roles", c.cfg.GroupsURL, userID)
	res := c.Fetch(ctx, rawURL)
	trace(diag, "user_groups", rawURL, res)
	if !res.OK {
		return nil, classify("user_groups", res)
	}

	var roles wireGroupRoles
	if err := json.Unmarshal(res.Data, &roles); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "user_groups", err)
	}

	groups := make([]models.Group, 0, len(roles.Data))
	for _, r := range roles.Data {
		groups = append(groups, models.Group{
			ID:          r.Group.ID,
			Name:        r.Group.Name,
			MemberCount: r.Group.MemberCount,
		})
	}
	return groups, nil
}

// FetchSignals gathers the profile, badges and groups for userID in
// parallel with settle-all semantics: each source failure degrades its
// slice of the bundle to empty instead of failing the whole fetch.
// The returned diagnostics merge each goroutine's trace; callers own the
// value, no shared mutable state survives the call.
func (c *Client) FetchSignals(ctx context.Context, userID int64) (models.SignalBundle, models.Diagnostics) {
	var (
		bundle      models.SignalBundle
		profileDiag models.Diagnostics
		badgeDiag   models.Diagnostics
		groupDiag   models.Diagnostics
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		profile, err := c.UserProfile(ctx, &profileDiag, userID)
		if err != nil {
			logging.Ctx(ctx).Warn().Int64("user_id", userID).Err(err).Msg("profile fetch degraded")
			return
		}
		bundle.AccountCreated = profile.Created
	}()

	badgesDone := make(chan struct{})
	go func() {
		defer close(badgesDone)
		badges, err := c.UserBadges(ctx, &badgeDiag, userID)
		if err != nil {
			logging.Ctx(ctx).Warn().Int64("user_id", userID).Err(err).Msg("badge fetch degraded")
			return
		}
		bundle.Badges = badges
	}()

	groups, err := c.UserGroups(ctx, &groupDiag, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Int64("user_id", userID).Err(err).Msg("group fetch degraded")
	} else {
		bundle.Groups = groups
	}

	<-done
	<-badgesDone

	if bundle.Badges == nil {
		bundle.Badges = []models.Badge{}
	}
	if bundle.Groups == nil {
		bundle.Groups = []models.Group{}
	}

	var diag models.Diagnostics
	for _, d := range []models.Diagnostics{profileDiag, badgeDiag, groupDiag} {
		diag.Requests = append(diag.Requests, d.Requests...)
		diag.Errors = append(diag.Errors, d.Errors...)
	}
	return bundle, diag
}

// ResolveUsernames resolves usernames to user IDs via the bulk lookup
// endpoint. Unknown usernames are simply absent from the result.
func (c *Client) ResolveUsernames(ctx context.Context, usernames []string) ([]ResolvedUser, error) {
	body, err := json.Marshal(map[string]interface{}{
		"usernames":          usernames,
		"excludeBannedUsers": true,
	})
	if err != nil {
		return nil, err
	}

	rawURL := c.cfg.UsersURL + "/v1/usernames/users"
	res := c.FetchJSON(ctx, rawURL, body)
	if !res.OK {
		return nil, classify("resolve_usernames", res)
	}

	var lookup wireUsernameLookup
	if err := json.Unmarshal(res.Data, &lookup); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "resolve_usernames", err)
	}

	resolved := make([]ResolvedUser, 0, len(lookup.Data))
	for _, u := range lookup.Data {
		resolved = append(resolved, ResolvedUser{ID: u.ID, Name: u.Name, DisplayName: u.DisplayName})
	}
	return resolved, nil
}

// SearchUsers performs a keyword user search, returning at most limit
// results.
func (c *Client) SearchUsers(ctx context.Context, keyword string, limit int) ([]ResolvedUser, error) {
	rawURL := fmt.Sprintf("%s/v1/users/search?keyword=%s&limit=%d",
		c.cfg.UsersURL, url.QueryEscape(keyword), limit)
	res := c.Fetch(ctx, rawURL)
	if !res.OK {
		return nil, classify("search_users", res)
	}

	var search wireUserSearch
	if err := json.Unmarshal(res.Data, &search); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "search_users", err)
	}

	results := make([]ResolvedUser, 0, len(search.Data))
	for _, u := range search.Data {
		results = append(results, ResolvedUser{ID: u.ID, Name: u.Name, DisplayName: u.DisplayName})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// GamesList fetches a page of the games list API for one sort token.
// The raw payload is returned for shape-tolerant extraction downstream.
func (c *Client) GamesList(ctx context.Context, diag *models.Diagnostics, sortToken string, maxRows int) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/v1/games/list?model.sortToken=%s&model.maxRows=%d&model.startRows=0",
		c.cfg.GamesURL, url.QueryEscape(sortToken), maxRows)
	res := c.Fetch(ctx, rawURL)
	trace(diag, "games_list", rawURL, res)
	if !res.OK {
		return nil, classify("games_list", res)
	}
	return res.Data, nil
}

// GamesMetadata fetches detail metadata for a batch of universe IDs.
// The raw payload is returned for shape-tolerant extraction downstream.
func (c *Client) GamesMetadata(ctx context.Context, diag *models.Diagnostics, universeIDs []int64) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/v1/games?universeIds=%s", c.cfg.GamesURL, joinIDs(universeIDs))
	res := c.Fetch(ctx, rawURL)
	trace(diag, "games_metadata", rawURL, res)
	if !res.OK {
		return nil, classify("games_metadata", res)
	}
	return res.Data, nil
}

// ExploreSorts fetches the discovery sort listing.
func (c *Client) ExploreSorts(ctx context.Context, diag *models.Diagnostics, sessionID string) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/v1/get-sorts?sessionId=%s&device=computer&country=all",
		c.cfg.ExploreURL, url.QueryEscape(sessionID))
	res := c.Fetch(ctx, rawURL)
	trace(diag, "explore_sorts", rawURL, res)
	if !res.OK {
		return nil, classify("explore_sorts", res)
	}
	return res.Data, nil
}

// ExploreSortContent fetches the contents of a single discovery sort.
func (c *Client) ExploreSortContent(ctx context.Context, diag *models.Diagnostics, sortID, sessionID string) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/v1/get-sort-content?sessionId=%s&sortId=%s&device=computer&country=all",
		c.cfg.ExploreURL, url.QueryEscape(sessionID), url.QueryEscape(sortID))
	res := c.Fetch(ctx, rawURL)
	trace(diag, "explore_sort_content", rawURL, res)
	if !res.OK {
		return nil, classify("explore_sort_content", res)
	}
	return res.Data, nil
}

// GameIcons resolves icon URLs for a batch of universe IDs. Only icons in
// the Completed state are returned; pending or blocked icons are omitted.
func (c *Client) GameIcons(ctx context.Context, diag *models.Diagnostics, universeIDs []int64) (map[int64]string, error) {
	rawURL := fmt.Sprintf("%s/v1/games/icons?universeIds=%s&size=512x512&format=Png&isCircular=false",
		c.cfg.ThumbnailsURL, joinIDs(universeIDs))
	res := c.Fetch(ctx, rawURL)
	trace(diag, "game_icons", rawURL, res)
	if !res.OK {
		return nil, classify("game_icons", res)
	}

	var batch wireThumbnailBatch
	if err := json.Unmarshal(res.Data, &batch); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "game_icons", err)
	}

	icons := make(map[int64]string, len(batch.Data))
	for _, entry := range batch.Data {
		if entry.State == "Completed" && entry.ImageURL != "" {
			icons[entry.TargetID] = entry.ImageURL
		}
	}
	return icons, nil
}

// AvatarHeadshot resolves the headshot thumbnail URL for one user.
// Returns empty string without error when the thumbnail is not ready.
func (c *Client) AvatarHeadshot(ctx context.Context, userID int64) (string, error) {
	rawURL := fmt.Sprintf("%s/v1/users/avatar-headshot?userIds=%d&size=150x150&format=Png&isCircular=true",
		c.cfg.ThumbnailsURL, userID)
	res := c.Fetch(ctx, rawURL)
	if !res.OK {
		return "", classify("avatar_headshot", res)
	}

	var batch wireThumbnailBatch
	if err := json.Unmarshal(res.Data, &batch); err != nil {
		return "", models.NewClassifiedError(models.ClassParseCorrupt, "avatar_headshot", err)
	}

	for _, entry := range batch.Data {
		if entry.TargetID == userID && entry.State == "Completed" {
			return entry.ImageURL, nil
		}
	}
	return "", nil
}

// joinIDs renders IDs as a comma-separated query value.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
