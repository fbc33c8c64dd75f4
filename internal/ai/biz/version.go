package biz

import "runtime/debug"

// OpenAISDKModule 服务商 SDK 模块路径
const OpenAISDKModule = "github.com/sashabaranov/go-openai"

const unknownVersion = "unknown"

// SDKVersionFromBuildInfo 从二进制的构建信息中读取 SDK 版本
func SDKVersionFromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknownVersion
	}
	return moduleVersion(info, OpenAISDKModule)
}

func moduleVersion(info *debug.BuildInfo, path string) string {
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		if dep.Version != "" {
			return dep.Version
		}
	}
	return unknownVersion
}
