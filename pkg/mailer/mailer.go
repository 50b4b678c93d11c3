package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/resitasrav/BookLab-System/config"
)

// Message 一封纯文本邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender 同步发送邮件，失败时返回错误
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ────────────────────── SMTP ──────────────────────

// SMTPSender 基于 net/smtp 的发送实现
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg *config.MailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.From == "" {
		return nil, fmt.Errorf("SMTP 配置不完整")
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		timeout:  timeout,
	}, nil
}

// Send 发送一封邮件
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("连接 SMTP 服务器失败: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("初始化 SMTP 会话失败: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("STARTTLS 失败: %w", err)
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("SMTP 认证失败: %w", err)
		}
	}

	envelopeFrom := extractAddress(s.from)
	if err := client.Mail(envelopeFrom); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("设置收件人 %s 失败: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if _, err := w.Write(BuildMessage(s.from, msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("提交邮件失败: %w", err)
	}
	return client.Quit()
}

// BuildMessage 组装 RFC 5322 邮件报文
func BuildMessage(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func extractAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}

// ────────────────────── 日志降级 ──────────────────────

// LogSender 未配置 SMTP 时使用，只记录日志
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender 创建日志发送器
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send 将邮件写入日志
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("邮件（未配置 SMTP，仅记录）",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// ────────────────────── 异步投递 ──────────────────────

// Dispatcher 在 Sender 之上提供同步 Send 与异步 Dispatch 两种投递方式
// Dispatch 失败只记录日志，不会返回给调用方
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher 创建投递器
func NewDispatcher(sender Sender, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sender: sender, logger: logger, timeout: timeout}
}

// Send 同步发送
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	return d.sender.Send(ctx, msg)
}

// Dispatch 后台发送，不重试
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("邮件通知发送失败",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}()
}

// Wait 等待所有后台投递结束，用于优雅停机
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
