package ioc

import (
	"github.com/KNICEX/position-tracker/internal/service/notification"
	"github.com/spf13/viper"
)

type discordServerConfig struct {
	Name      string `mapstructure:"name"`
	ChannelId string `mapstructure:"channel_id"`
	RoleId    string `mapstructure:"role_id"`
}

type telegramChatConfig struct {
	Name   string `mapstructure:"name"`
	ChatId string `mapstructure:"chat_id"`
}

// InitNotification 构建所有启用平台的投递通道和接收方列表
func InitNotification() ([]notification.Notifier, []notification.Recipient) {
	var notifiers []notification.Notifier
	var recipients []notification.Recipient

	type discordConfig struct {
		Enabled  bool                  `mapstructure:"enabled"`
		BotToken string                `mapstructure:"bot_token"`
		Servers  []discordServerConfig `mapstructure:"servers"`
	}
	var discord discordConfig
	if err := viper.UnmarshalKey("notify.discord", &discord); err != nil {
		panic(err)
	}
	if discord.Enabled {
		if discord.BotToken == "" {
			panic("notify.discord enabled but bot_token not set")
		}
		notifiers = append(notifiers, notification.NewDiscordNotifier(discord.BotToken))
		for _, server := range discord.Servers {
			recipients = append(recipients, notification.Recipient{
				Platform: notification.PlatformDiscord,
				Name:     server.Name,
				TargetID: server.ChannelId,
				RoleID:   server.RoleId,
			})
		}
	}

	type telegramConfig struct {
		Enabled  bool                 `mapstructure:"enabled"`
		BotToken string               `mapstructure:"bot_token"`
		Chats    []telegramChatConfig `mapstructure:"chats"`
	}
	var telegram telegramConfig
	if err := viper.UnmarshalKey("notify.telegram", &telegram); err != nil {
		panic(err)
	}
	if telegram.Enabled {
		if telegram.BotToken == "" {
			panic("notify.telegram enabled but bot_token not set")
		}
		notifiers = append(notifiers, notification.NewTelegramNotifier(telegram.BotToken))
		for _, chat := range telegram.Chats {
			recipients = append(recipients, notification.Recipient{
				Platform: notification.PlatformTelegram,
				Name:     chat.Name,
				TargetID: chat.ChatId,
			})
		}
	}

	if len(recipients) == 0 {
		panic("no notification recipient configured")
	}
	return notifiers, recipients
}
