// Package secrets 从 AWS SSM Parameter Store 读取上游凭证
// 仅在启动时调用一次，结果写入只读配置
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI *ssm.Client 满足该接口
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter 读取单个参数
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParamStore 封装 SSM 参数读取
type ParamStore struct {
	api ssmAPI
}

// NewParamStore 使用给定的 SSM API 创建 ParamStore
func NewParamStore(api ssmAPI) (*ParamStore, error) {
	if api == nil {
		return nil, errors.New("secrets: ssm api must not be nil")
	}
	return &ParamStore{api: api}, nil
}

// NewDefaultParamStore 使用默认的 AWS 凭证链创建 ParamStore
func NewDefaultParamStore(ctx context.Context) (*ParamStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}
	return NewParamStore(ssm.NewFromConfig(cfg))
}

// GetParameter 读取参数值（SecureString 自动解密）
func (p *ParamStore) GetParameter(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: parameter name is required")
	}

	out, err := p.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("secrets: parameter %q has no value", name)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// ResolveAPIKey 确定最终使用的 API Key
// 已配置的 key 优先；否则在 param 非空时从参数存储读取
// 两者都没有时返回空字符串，由转发接口报告配置错误
func ResolveAPIKey(ctx context.Context, getter Getter, key, param string) (string, error) {
	if key = strings.TrimSpace(key); key != "" {
		return key, nil
	}
	if strings.TrimSpace(param) == "" || getter == nil {
		return "", nil
	}
	value, err := getter.GetParameter(ctx, param)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
