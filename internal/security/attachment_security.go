package security

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"

	"supportdesk/backend/internal/domain"
)

// sniffLen 读取用于魔数检测的头部字节数，需覆盖常见的 PE 头偏移
const sniffLen = 1024

// executableSignatures 可执行文件魔数，PE 由 isPortableExecutable 单独识别
var executableSignatures = [][]byte{
	{0x7F, 0x45, 0x4C, 0x46}, // ELF executable
	{0xFE, 0xED, 0xFA, 0xCE}, // Mach-O executable
	{0xCE, 0xFA, 0xED, 0xFE}, // Mach-O executable (reverse)
}

// AttachmentSecurity 附件安全检查器
//
// 只拦截可执行文件，大小限制交给工单系统处理。
type AttachmentSecurity struct {
	dangerousExtensions map[string]bool
}

// NewAttachmentSecurity 创建附件安全检查器
func NewAttachmentSecurity() *AttachmentSecurity {
	return &AttachmentSecurity{
		dangerousExtensions: map[string]bool{
			".exe": true,
			".bat": true,
			".cmd": true,
			".scr": true,
			".pif": true,
			".com": true,
			".vbs": true,
			".js":  true,
			".jar": true,
			".msi": true,
			".ps1": true,
			".sh":  true,
			".php": true,
			".asp": true,
			".jsp": true,
		},
	}
}

// SanitizeFilename 去掉客户端传来的路径部分，只保留文件名
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "attachment"
	}
	return name
}

// CheckAttachment 检查附件是否允许上传，拒绝时返回包装了 domain.ErrAttachmentBlocked 的错误
//
// 零字节附件不会上传，直接放行。
func (as *AttachmentSecurity) CheckAttachment(file domain.FileRef) error {
	if file.Empty() {
		return nil
	}
	if reason, blocked := as.checkFileExtension(file.Filename); blocked {
		return fmt.Errorf("%w: %s", domain.ErrAttachmentBlocked, reason)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open attachment %q: %w", file.Filename, err)
	}
	defer rc.Close()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read attachment %q: %w", file.Filename, err)
	}

	if reason, blocked := checkFileMagic(header[:n]); blocked {
		return fmt.Errorf("%w: %s", domain.ErrAttachmentBlocked, reason)
	}
	return nil
}

// checkFileExtension 检查文件扩展名
func (as *AttachmentSecurity) checkFileExtension(filename string) (string, bool) {
	ext := strings.ToLower(path.Ext(filename))
	if as.dangerousExtensions[ext] {
		return "dangerous file extension " + ext, true
	}
	return "", false
}

// checkFileMagic 检查文件魔数
func checkFileMagic(header []byte) (string, bool) {
	if isPortableExecutable(header) {
		return "executable file detected", true
	}
	for _, sig := range executableSignatures {
		if bytes.HasPrefix(header, sig) {
			return "executable file detected", true
		}
	}
	return "", false
}

// isPortableExecutable 识别 Windows PE 文件
//
// 仅有 "MZ" 前缀不足以判断，还要求 e_lfanew 指向的位置是 "PE\0\0" 签名。
func isPortableExecutable(header []byte) bool {
	if len(header) < 0x40 || header[0] != 'M' || header[1] != 'Z' {
		return false
	}
	offset := int64(binary.LittleEndian.Uint32(header[0x3C:0x40]))
	if offset+4 > int64(len(header)) {
		return false
	}
	return bytes.Equal(header[offset:offset+4], []byte{'P', 'E', 0, 0})
}
