package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"reportdesk.app/reportdesk/core/config"
	"reportdesk.app/reportdesk/internal/model"
)

// restClient talks to a Discord-compatible REST API with bot-token auth.
type restClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewRESTClient(cfg config.ChatConfig) Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &restClient{
		baseURL: cfg.APIBaseURL,
		token:   cfg.BotToken,
		http:    &http.Client{Timeout: timeout},
	}
}

// Wire types for the platform's message payloads. IDs come back as strings.
type wireEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type wireEmbed struct {
	Title     string           `json:"title,omitempty"`
	Color     int              `json:"color,omitempty"`
	Fields    []wireEmbedField `json:"fields,omitempty"`
	Footer    *wireFooter      `json:"footer,omitempty"`
	Image     *wireImage       `json:"image,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
}

type wireFooter struct {
	Text string `json:"text"`
}

type wireImage struct {
	URL string `json:"url"`
}

type wireComponentRow struct {
	Type       int             `json:"type"` // 1 = action row
	Components []wireComponent `json:"components"`
}

type wireComponent struct {
	Type     int    `json:"type"`  // 2 = button
	Style    int    `json:"style"` // 1 = primary
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
	Disabled bool   `json:"disabled,omitempty"`
}

type wireMessagePayload struct {
	Content    string             `json:"content,omitempty"`
	Embeds     []wireEmbed        `json:"embeds,omitempty"`
	Components []wireComponentRow `json:"components,omitempty"`
}

type wireAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

type wireMessage struct {
	ID          string           `json:"id"`
	ChannelID   string           `json:"channel_id"`
	Attachments []wireAttachment `json:"attachments"`
}

func (c *restClient) PostMessage(ctx context.Context, channelID int64, msg Message) (*Posted, error) {
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	payload := toWirePayload(msg)

	var (
		resp *http.Response
		err  error
	)
	if len(msg.Files) > 0 {
		resp, err = c.doMultipart(ctx, path, payload, msg.Files)
	} else {
		resp, err = c.doJSON(ctx, http.MethodPost, path, payload)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var created wireMessage
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding message response: %w", err)
	}

	messageID, err := strconv.ParseInt(created.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing message id %q: %w", created.ID, err)
	}

	posted := &Posted{ID: messageID}
	for _, a := range created.Attachments {
		posted.Attachments = append(posted.Attachments, model.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         a.URL,
		})
	}
	return posted, nil
}

func (c *restClient) EditMessage(ctx context.Context, channelID, messageID int64, msg Message) error {
	path := fmt.Sprintf("/channels/%d/messages/%d", channelID, messageID)
	resp, err := c.doJSON(ctx, http.MethodPatch, path, toWirePayload(msg))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *restClient) SendDM(ctx context.Context, userID int64, content string) error {
	// DMs are two calls: open (or reuse) the DM channel, then post to it.
	body := map[string]string{"recipient_id": strconv.FormatInt(userID, 10)}
	resp, err := c.doJSON(ctx, http.MethodPost, "/users/@me/channels", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("opening dm channel: %w", err)
	}

	var dmChannel struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&dmChannel); err != nil {
		return fmt.Errorf("decoding dm channel: %w", err)
	}

	channelID, err := strconv.ParseInt(dmChannel.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing dm channel id %q: %w", dmChannel.ID, err)
	}

	_, err = c.PostMessage(ctx, channelID, Message{Content: content})
	return err
}

func (c *restClient) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat api request: %w", err)
	}
	return resp, nil
}

// doMultipart uploads forwarded files alongside the JSON payload. Files are
// streamed from their CDN URL; a file that cannot be fetched is skipped so a
// broken attachment never blocks the card itself.
func (c *restClient) doMultipart(ctx context.Context, path string, payload wireMessagePayload, files []FileRef) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := mw.WriteField("payload_json", string(payloadJSON)); err != nil {
		return nil, err
	}

	for i, f := range files {
		data, fetchErr := c.fetchFile(ctx, f.URL)
		if fetchErr != nil {
			slog.WarnContext(ctx, "skipping unfetchable attachment", "filename", f.Name, "error", fetchErr)
			continue
		}
		part, err := mw.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat api request: %w", err)
	}
	return resp, nil
}

func (c *restClient) fetchFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", ErrUnpostable, resp.StatusCode)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("chat api error: status %d: %s", resp.StatusCode, string(body))
}

func toWirePayload(msg Message) wireMessagePayload {
	payload := wireMessagePayload{Content: msg.Content}

	if msg.Embed != nil {
		e := wireEmbed{
			Title: msg.Embed.Title,
			Color: msg.Embed.Color,
		}
		for _, f := range msg.Embed.Fields {
			e.Fields = append(e.Fields, wireEmbedField(f))
		}
		if msg.Embed.FooterText != "" {
			e.Footer = &wireFooter{Text: msg.Embed.FooterText}
		}
		if msg.Embed.ImageURL != "" {
			e.Image = &wireImage{URL: msg.Embed.ImageURL}
		}
		if !msg.Embed.Timestamp.IsZero() {
			e.Timestamp = msg.Embed.Timestamp.UTC().Format(time.RFC3339)
		}
		payload.Embeds = []wireEmbed{e}
	}

	if len(msg.Buttons) > 0 {
		row := wireComponentRow{Type: 1}
		for _, b := range msg.Buttons {
			row.Components = append(row.Components, wireComponent{
				Type:     2,
				Style:    1,
				Label:    b.Label,
				CustomID: b.CustomID,
				Disabled: b.Disabled,
			})
		}
		payload.Components = []wireComponentRow{row}
	}

	return payload
}
