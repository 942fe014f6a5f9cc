// Package importer maps viewer configuration onto mesh import options.
package importer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/config"
	"github.com/Faultbox/objviewer/internal/engine/model"
)

// Options maps the import section of the config onto model options.
func Options(cfg config.ImportConfig, textures model.TextureCache) (model.ImportOptions, error) {
	dedup, err := model.ParseDedupStrategy(cfg.Dedup)
	if err != nil {
		return model.ImportOptions{}, err
	}
	partition, err := model.ParsePartitionPolicy(cfg.Partition)
	if err != nil {
		return model.ImportOptions{}, err
	}

	def := model.DefaultMaterial()
	def.Ambient = mgl32.Vec3(cfg.DefaultMaterial.Ambient)
	def.Diffuse = mgl32.Vec3(cfg.DefaultMaterial.Diffuse)
	def.Specular = mgl32.Vec3(cfg.DefaultMaterial.Specular)
	def.Shininess = cfg.DefaultMaterial.Shininess

	return model.ImportOptions{
		Dedup:           dedup,
		Partition:       partition,
		StrictLifecycle: cfg.StrictLifecycle,
		DefaultMaterial: &def,
		Textures:        textures,
	}, nil
}
