package service

import (
	"time"

	"clipforge/config"
	"clipforge/internal/types"
	"clipforge/log"
	"clipforge/pkg/ffmpeg"
	"clipforge/pkg/nvidia"
	"clipforge/pkg/openai"
	"clipforge/pkg/oss"

	"go.uber.org/zap"
)

type Service struct {
	MediaProcessor  types.MediaProcessor
	ChatCompleter   types.ChatCompleter
	VisionCompleter types.VisionCompleter
	OssClient       *oss.Client
}

func NewService() *Service {
	scoringConf := config.Conf.Scoring
	timeout := time.Duration(scoringConf.TimeoutSeconds) * time.Second

	var visionCompleter types.VisionCompleter
	switch scoringConf.Provider {
	case "nvidia":
		visionCompleter = nvidia.NewClient(scoringConf.BaseUrl, scoringConf.ApiKey, scoringConf.Model,
			scoringConf.Temperature, scoringConf.MaxTokens, timeout)
	default:
		opts := []openai.Option{
			openai.WithTemperature(scoringConf.Temperature),
			openai.WithMaxTokens(scoringConf.MaxTokens),
			openai.WithTimeout(timeout),
		}
		if scoringConf.Model != "" {
			opts = append(opts, openai.WithModel(scoringConf.Model))
		}
		visionCompleter = openai.NewClient(scoringConf.BaseUrl, scoringConf.ApiKey, config.Conf.App.Proxy, opts...)
	}
	log.GetLogger().Info("当前选择的评分源 scoring provider", zap.String("provider", scoringConf.Provider))

	var chatOpts []openai.Option
	if config.Conf.Llm.Model != "" {
		chatOpts = append(chatOpts, openai.WithModel(config.Conf.Llm.Model))
	}
	chatCompleter := openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, config.Conf.App.Proxy, chatOpts...)

	var ossClient *oss.Client
	if config.Conf.Oss.Enabled {
		ossClient = oss.NewClient(config.Conf.Oss.Region, config.Conf.Oss.AccessKeyId,
			config.Conf.Oss.AccessKeySecret, config.Conf.Oss.Bucket, "clipforge")
	}

	return &Service{
		MediaProcessor:  ffmpeg.NewProcessor(),
		ChatCompleter:   chatCompleter,
		VisionCompleter: visionCompleter,
		OssClient:       ossClient,
	}
}
