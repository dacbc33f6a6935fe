// Package alerta envia avisos do gabinete para canais externos.
package alerta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	SeveridadeInfo    = "info"
	SeveridadeAviso   = "aviso"
	SeveridadeCritica = "critica"
)

// Notifier envia alertas para canais externos.
type Notifier interface {
	Notify(ctx context.Context, msg Mensagem) error
}

type Mensagem struct {
	Titulo     string
	Texto      string
	Severidade string
}

// SlackNotifier publica no webhook de entrada do Slack.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier devolve nil quando o webhook não está configurado.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	if webhookURL == "" {
		return nil
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify ignora silenciosamente quando o notifier está desligado.
func (s *SlackNotifier) Notify(ctx context.Context, msg Mensagem) error {
	if s == nil || s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]any{"text": formatSlack(msg)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack respondeu %d", resp.StatusCode)
	}
	return nil
}

func formatSlack(msg Mensagem) string {
	emoji := ":information_source:"
	switch msg.Severidade {
	case SeveridadeAviso:
		emoji = ":warning:"
	case SeveridadeCritica:
		emoji = ":rotating_light:"
	}
	if msg.Titulo != "" {
		return emoji + " *" + msg.Titulo + "*\n" + msg.Texto
	}
	return emoji + " " + msg.Texto
}
