package resource

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"tacticore/internal/vault"
)

// Load walks root's standard subdirectories (sheets/, attacks/,
// spells/, components/, statuses/, vaults/, scripts/, textures/) and
// builds a Registry. A missing top-level directory is non-fatal: it's
// warned and skipped, per the resource tree's "missing directories are
// non-fatal" contract. A file that fails to parse is also non-fatal —
// it's warned and excluded from its registry map, so one bad resource
// file never prevents the rest of the tree from loading.
func Load(root string, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reg := empty()

	loadYAMLDir(root, "sheets", log, reg.Sheets)
	loadYAMLDir(root, "attacks", log, reg.Attacks)
	loadYAMLDir(root, "spells", log, reg.Spells)
	loadYAMLDir(root, "components", log, reg.Components)
	loadYAMLDir(root, "statuses", log, reg.Statuses)
	loadVaultDir(root, log, reg.Vaults)
	loadScriptDir(root, log, reg.Scripts)
	loadTextureDir(root, log, reg.Textures)

	return reg, nil
}

// walkDir lists every regular file under root/dirName, calling fn with
// the resource key (path relative to dirName, extension stripped) and
// the full file path. A missing dirName is warned and skipped.
func walkDir(root, dirName string, log *zap.Logger, fn func(key, path string)) {
	base := filepath.Join(root, dirName)
	entries, err := os.ReadDir(base)
	if err != nil {
		log.Warn("resource directory missing, skipping", zap.String("dir", base), zap.Error(err))
		return
	}
	walkDirRecursive(base, base, entries, log, fn)
}

func walkDirRecursive(base, dir string, entries []os.DirEntry, log *zap.Logger, fn func(key, path string)) {
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			sub, err := os.ReadDir(full)
			if err != nil {
				log.Warn("failed to read resource subdirectory", zap.String("dir", full), zap.Error(err))
				continue
			}
			walkDirRecursive(base, full, sub, log, fn)
			continue
		}
		rel, err := filepath.Rel(base, full)
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(rel, filepath.Ext(rel))
		key = filepath.ToSlash(key)
		fn(key, full)
	}
}

// loadYAMLDir parses every file under root/dirName as YAML into T,
// inserting successes into dst and warning (not failing) on parse
// errors.
func loadYAMLDir[T any](root, dirName string, log *zap.Logger, dst map[string]T) {
	walkDir(root, dirName, log, func(key, path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to read resource file", zap.String("path", path), zap.Error(err))
			return
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			log.Warn("failed to parse resource file", zap.String("path", path), zap.Error(err))
			return
		}
		dst[key] = v
	})
}

func loadVaultDir(root string, log *zap.Logger, dst map[string]vault.Vault) {
	walkDir(root, "vaults", log, func(key, path string) {
		v, err := vault.Open(path)
		if err != nil {
			log.Warn("failed to parse vault", zap.String("path", path), zap.Error(err))
			return
		}
		dst[key] = v
	})
}

func loadScriptDir(root string, log *zap.Logger, dst map[string]string) {
	walkDir(root, "scripts", log, func(key, path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to read script", zap.String("path", path), zap.Error(err))
			return
		}
		dst[key] = string(data)
	})
}

// loadTextureDir records only the on-disk path for each texture key;
// decoding image bytes is the out-of-scope rendering layer's job.
func loadTextureDir(root string, log *zap.Logger, dst map[string]string) {
	walkDir(root, "textures", log, func(key, path string) {
		dst[key] = path
	})
}
