// Package web 内嵌前端构建产物
//
// out/ 目录由前端仓库的构建流水线产出后复制到这里，
// 网关二进制自带完整页面，部署时不需要单独的静态文件服务。
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:out
var assets embed.FS

// Assets 返回以 out/ 为根的文件系统
func Assets() (fs.FS, error) {
	return fs.Sub(assets, "out")
}
