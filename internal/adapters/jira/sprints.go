/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "strconv"

    "github.com/HamedShams/team-pulse/internal/domain"
)

// BoardSprints lists every sprint of a board (Agile API). Results are cached per board for five minutes.
func (c *Client) BoardSprints(ctx context.Context, boardID int64) ([]domain.Sprint, error) {
    if boardID <= 0 { return nil, errors.New("jira: invalid board id") }
    return c.sprints.GetOrLoad(boardID, func() ([]domain.Sprint, error) {
        return c.fetchBoardSprints(ctx, boardID)
    })
}

func (c *Client) fetchBoardSprints(ctx context.Context, boardID int64) ([]domain.Sprint, error) {
    path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/sprint"
    var out []domain.Sprint
    start := 0
    for {
        q := url.Values{}
        q.Set("startAt", strconv.Itoa(start))
        q.Set("maxResults", strconv.Itoa(sprintPageSize))
        var page struct {
            IsLast bool            `json:"isLast"`
            Values []domain.Sprint `json:"values"`
        }
        err := c.withRetry(ctx, func(ctx context.Context) error {
            return c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil, &page)
        })
        if err != nil { return nil, fmt.Errorf("list sprints of board %d: %w", boardID, err) }
        for _, s := range page.Values {
            if s.BoardID == 0 { s.BoardID = boardID }
            out = append(out, s)
        }
        if page.IsLast || len(page.Values) == 0 { break }
        start += len(page.Values)
    }
    c.log.Debug().Int64("board_id", boardID).Int("sprints", len(out)).Msg("jira: board sprints loaded")
    return out, nil
}

// FindSprint looks the sprint up across the given boards. A board that cannot be
// listed is skipped. Returns ErrDataUnavailable when no board knows the sprint.
func (c *Client) FindSprint(ctx context.Context, sprintID int64, boardIDs []int64) (domain.Sprint, error) {
    for _, b := range boardIDs {
        sprints, err := c.BoardSprints(ctx, b)
        if err != nil {
            c.log.Warn().Err(err).Int64("board_id", b).Msg("jira: board sprints unavailable")
            continue
        }
        for _, s := range sprints {
            if s.ID == sprintID { return s, nil }
        }
    }
    return domain.Sprint{}, fmt.Errorf("sprint %d: %w", sprintID, domain.ErrDataUnavailable)
}
