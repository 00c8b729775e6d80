package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/ports"
)

// tgClient implements the BotClientPort.
type tgClient struct {
	api  *tgbotapi.BotAPI
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a new Telegram client adapter.
func NewClient(api *tgbotapi.BotAPI, baseLogger zerolog.Logger) ports.BotClientPort {
	return &tgClient{
		api:  api,
		http: http.DefaultClient,
		log:  baseLogger.With().Str("component", "tg_client").Logger(),
	}
}

// SendMessage translates our params into a tgbotapi message.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if params.ReplyMarkup != nil {
		msg.ReplyMarkup = buildInlineKeyboard(*params.ReplyMarkup)
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *tgClient) SendPhoto(ctx context.Context, params ports.SendPhotoParams) (int, error) {
	photo := tgbotapi.NewPhoto(params.ChatID, tgbotapi.FilePath(params.Path))
	photo.Caption = params.Caption
	photo.ParseMode = tgbotapi.ModeHTML

	sent, err := c.api.Send(photo)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send photo")
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *tgClient) SendDocument(ctx context.Context, params ports.SendDocumentParams) (int, error) {
	file, closer, err := documentFile(params.Path, params.FileID, params.FileName)
	if err != nil {
		return 0, err
	}
	if closer != nil {
		defer closer.Close()
	}

	doc := tgbotapi.NewDocument(params.ChatID, file)
	doc.Caption = params.Caption
	doc.ParseMode = tgbotapi.ModeHTML
	if thumb := thumbFile(params.ThumbPath, params.ThumbFileID); thumb != nil {
		doc.Thumb = thumb
	}
	if params.ReplyMarkup != nil {
		doc.ReplyMarkup = buildInlineKeyboard(*params.ReplyMarkup)
	}

	sent, err := c.api.Send(doc)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send document")
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *tgClient) SendMediaGroup(ctx context.Context, params ports.SendMediaGroupParams) error {
	var media []interface{}
	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	for _, d := range params.Documents {
		file, closer, err := documentFile(d.Path, d.FileID, d.FileName)
		if err != nil {
			return err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		item := tgbotapi.NewInputMediaDocument(file)
		if thumb := thumbFile(d.ThumbPath, d.ThumbFileID); thumb != nil {
			item.Thumb = thumb
		}
		media = append(media, item)
	}

	group := tgbotapi.NewMediaGroup(params.ChatID, media)
	if _, err := c.api.SendMediaGroup(group); err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send media group")
		return err
	}
	return nil
}

// AnswerCallbackQuery sends a response to a callback query (stops the spinner)
func (c *tgClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	callbackConfig := tgbotapi.NewCallback(params.CallbackQueryID, params.Text)
	if _, err := c.api.Request(callbackConfig); err != nil {
		c.log.Error().Err(err).
			Str("callback_query_id", params.CallbackQueryID).
			Msg("Failed to answer callback query")
		return err
	}
	return nil
}

func (c *tgClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		c.log.Error().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Msg("Failed to delete message")
		return err
	}
	return nil
}

// DownloadFile resolves the file handle and streams the blob into destPath.
func (c *tgClient) DownloadFile(ctx context.Context, fileID string, destPath string) error {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.api.Token), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch file %s: unexpected status %s", fileID, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", fileID, err)
	}
	return out.Close()
}

// buildInlineKeyboard is a helper to create the inline keyboard.
func buildInlineKeyboard(keyboard ports.InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, buttonRow := range keyboard {
		var row []tgbotapi.InlineKeyboardButton
		for _, btn := range buttonRow {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// documentFile picks the upload source. A custom file name forces the
// open-file path because FilePath uploads keep the on-disk name.
func documentFile(path, fileID, fileName string) (tgbotapi.RequestFileData, io.Closer, error) {
	if path == "" {
		return tgbotapi.FileID(fileID), nil, nil
	}
	if fileName == "" {
		return tgbotapi.FilePath(path), nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return tgbotapi.FileReader{Name: fileName, Reader: f}, f, nil
}

func thumbFile(path, fileID string) tgbotapi.RequestFileData {
	if path != "" {
		return tgbotapi.FilePath(path)
	}
	if fileID != "" {
		return tgbotapi.FileID(fileID)
	}
	return nil
}
