package translate

import (
	"context"
	"fmt"

	"github.com/iabetor/voxd/internal/logger"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tmt "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tmt/v20180321"
)

// TencentEngine 使用腾讯云机器翻译（TMT）实现翻译。
// 适用于中国大陆网络环境。
type TencentEngine struct {
	client *tmt.Client
}

// tencentCodeMap 标准代码 → 腾讯云语言代码。未列出的代码原样传递。
var tencentCodeMap = map[string]string{
	"zh-CN": "zh",
	"zh-TW": "zh-TW",
}

// NewTencentEngine 创建腾讯云翻译引擎。
func NewTencentEngine(secretID, secretKey, region string) (*TencentEngine, error) {
	if secretID == "" || secretKey == "" {
		return nil, fmt.Errorf("腾讯云翻译需要 SecretID 和 SecretKey")
	}
	if region == "" {
		region = "ap-guangzhou"
	}

	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tmt.tencentcloudapi.com"

	client, err := tmt.NewClient(credential, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建翻译客户端失败: %w", err)
	}

	logger.Info("[translate] 腾讯云翻译引擎已初始化")
	return &TencentEngine{client: client}, nil
}

// Translate 调用 TextTranslate 接口。
func (t *TencentEngine) Translate(ctx context.Context, text, source, target string) (string, error) {
	request := tmt.NewTextTranslateRequest()
	request.SourceText = common.StringPtr(text)
	request.Source = common.StringPtr(toTencentCode(source))
	request.Target = common.StringPtr(toTencentCode(target))
	request.ProjectId = common.Int64Ptr(0)

	response, err := t.client.TextTranslateWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("翻译请求失败: %w", err)
	}

	if response.Response == nil || response.Response.TargetText == nil {
		return "", fmt.Errorf("翻译响应为空")
	}

	result := *response.Response.TargetText
	logger.Debugf("[translate] tencent: %s -> %s, %d -> %d 字符",
		source, target, len([]rune(text)), len([]rune(result)))

	return result, nil
}

func toTencentCode(code string) string {
	if c, ok := tencentCodeMap[code]; ok {
		return c
	}
	return code
}
