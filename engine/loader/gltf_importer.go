package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/sloth/common"
	"go.uber.org/zap"
)

// importedScene is the CPU-side result of a glTF import: meshes in primitive order and materials
// with their base-colour textures decoded.
type importedScene struct {
	Meshes    []importedMesh
	Materials []importedMaterial
}

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	// workers caps the decode goroutines started per Import
	workers int
	log     *zap.Logger
}

// gltfImporter orchestrates a full glTF/GLB import: fetch, parse, extract meshes and materials,
// and decode textures.
type gltfImporter interface {
	// Import fetches the scene file through resolver and extracts everything the viewer draws.
	//
	// Parameters:
	//   - ctx: cancels fetches
	//   - resolver: resolves the scene file and the resources it references
	//
	// Returns:
	//   - *importedScene: the imported scene
	//   - error: a LoadError (possibly wrapped) describing the failure
	Import(ctx context.Context, resolver AssetResolver) (*importedScene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer that fetches and decodes textures on up to workers
// goroutines.
//
// Parameters:
//   - workers: the decode concurrency, at least 1
//   - log: the logger
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(workers int, log *zap.Logger) gltfImporter {
	return &gltfImporterImpl{workers: max(workers, 1), log: log}
}

func (i *gltfImporterImpl) Import(ctx context.Context, resolver AssetResolver) (*importedScene, error) {
	data, err := resolver.Fetch(ctx, resolver.SceneFile())
	if err != nil {
		return nil, err
	}

	parser := newGLTFParser(resolver)
	if err := parser.Parse(ctx, data); err != nil {
		return nil, err
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, err
	}
	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, err
	}

	if err := i.decodeTextures(ctx, resolver, materials); err != nil {
		return nil, err
	}
	return &importedScene{Meshes: meshes, Materials: materials}, nil
}

// decodeTextures fetches and decodes every base-colour image in parallel. Materials without one
// get a 1x1 texture filled with their factor.
//
// Workers run only for the duration of the call: they drain a task channel that is closed once
// every texture is queued, and exit when it is empty.
func (i *gltfImporterImpl) decodeTextures(ctx context.Context, resolver AssetResolver, materials []importedMaterial) error {
	var pending []int
	for idx := range materials {
		mat := &materials[idx]
		if mat.HasTexture {
			pending = append(pending, idx)
			continue
		}
		i.log.Info("material has no base colour texture, using factor texture",
			zap.String("material", mat.Name), zap.Float32s("factor", mat.Factor[:]))
		mat.Texture = common.SolidColorTexture(mat.Factor)
	}
	if len(pending) == 0 {
		return nil
	}

	tasks := make(chan worker.Task, len(pending))
	stop := make(chan int)
	for id := range min(i.workers, len(pending)) {
		worker.NewWorker(id, tasks, stop, 0, nil).Start()
	}

	errs := make([]error, len(materials))
	var wg sync.WaitGroup
	wg.Add(len(pending))
	for _, idx := range pending {
		mat := &materials[idx]
		tasks <- worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				errs[idx] = decodeMaterialTexture(ctx, resolver, mat)
				return nil, errs[idx]
			},
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for idx, err := range errs {
		if err != nil {
			return fmt.Errorf("material %q: %w", materials[idx].Name, err)
		}
	}
	return nil
}

func decodeMaterialTexture(ctx context.Context, resolver AssetResolver, mat *importedMaterial) error {
	data := mat.Data
	if data == nil {
		fetched, err := resolver.Fetch(ctx, mat.URI)
		if err != nil {
			return err
		}
		data = fetched
	}

	tex, _, err := common.DecodeRGBA(data)
	if err != nil {
		if errors.Is(err, common.ErrNotAnImage) {
			return errorf(ErrorKindUnsupportedFeature, "base colour texture: %v", err)
		}
		return errorf(ErrorKindParseError, "base colour texture: %v", err)
	}
	mat.Texture = tex
	mat.Data = nil
	return nil
}
