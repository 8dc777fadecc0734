package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/julianstephens/tokumei/internal/models"
)

const (
	PathInitUser      = "/api/users/init"
	PathDiaries       = "/api/diaries"
	PathTodayDiaries  = "/api/diaries/today"
	PathSaveDiary     = "/api/diaries/save"
	PathSavedDiaries  = "/api/diaries/saved"
	PathMyDiaries     = "/api/diaries/my"
	PathNotifications = "/api/users/notifications"
)

type initUserResponse struct {
	UserID string `json:"user_id"`
}

type createDiaryRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Content string `json:"content" validate:"notblank"`
}

type saveDiaryRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	DiaryID string `json:"diary_id" validate:"required"`
}

// InitUser issues a new anonymous identity.
func (c *Client) InitUser(ctx context.Context) (string, error) {
	var resp initUserResponse
	if err := c.do(ctx, "initUser", http.MethodPost, PathInitUser, nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("initUser: %w: empty user_id", ErrUnexpected)
	}
	return resp.UserID, nil
}

// CreateDiary posts one entry owned by userID.
func (c *Client) CreateDiary(ctx context.Context, userID, content string) error {
	req := createDiaryRequest{UserID: userID, Content: content}
	return c.do(ctx, "createDiary", http.MethodPost, PathDiaries, nil, req, nil)
}

// TodayDiaries fetches the next batch of entries distributed to userID today.
func (c *Client) TodayDiaries(ctx context.Context, userID string) ([]models.Diary, error) {
	return c.list(ctx, "todayDiaries", PathTodayDiaries, userID)
}

// SaveDiary records diaryID as userID's favorite for today.
func (c *Client) SaveDiary(ctx context.Context, userID, diaryID string) error {
	req := saveDiaryRequest{UserID: userID, DiaryID: diaryID}
	return c.do(ctx, "saveDiary", http.MethodPost, PathSaveDiary, nil, req, nil)
}

// SavedDiaries lists every entry userID has saved.
func (c *Client) SavedDiaries(ctx context.Context, userID string) ([]models.Diary, error) {
	return c.list(ctx, "savedDiaries", PathSavedDiaries, userID)
}

// MyDiaries lists entries authored by userID.
func (c *Client) MyDiaries(ctx context.Context, userID string) ([]models.Diary, error) {
	return c.list(ctx, "myDiaries", PathMyDiaries, userID)
}

// Notifications lists authored entries with recent save activity.
func (c *Client) Notifications(ctx context.Context, userID string) ([]models.Diary, error) {
	return c.list(ctx, "notifications", PathNotifications, userID)
}

func (c *Client) list(ctx context.Context, op, path, userID string) ([]models.Diary, error) {
	if err := c.validate.Var(userID, "required"); err != nil {
		return nil, fmt.Errorf("%s: user_id is required", op)
	}

	var diaries []models.Diary
	if err := c.do(ctx, op, http.MethodGet, path, url.Values{"user_id": {userID}}, nil, &diaries); err != nil {
		return nil, err
	}
	if diaries == nil {
		diaries = []models.Diary{}
	}
	return diaries, nil
}
