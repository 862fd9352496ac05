package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	defaultSceneFile    = "scene.gltf"
	defaultSceneFileGLB = "scene.glb"
)

// AssetResolver fetches the scene file and the resources it references by relative name.
type AssetResolver interface {
	// Fetch returns the bytes of the named resource. Names are relative to the scene file and may be
	// URI-encoded, as glTF stores them.
	//
	// Parameters:
	//   - ctx: cancels remote fetches
	//   - name: the resource name
	//
	// Returns:
	//   - []byte: the resource contents
	//   - error: a LoadError of kind ErrorKindNotFound if the resource does not exist
	Fetch(ctx context.Context, name string) ([]byte, error)

	// SceneFile returns the name of the scene file to Fetch first.
	//
	// Returns:
	//   - string: the scene file name
	SceneFile() string

	// Describe returns a human-readable location for logs.
	//
	// Returns:
	//   - string: the description
	Describe() string
}

type localResolver struct {
	dir   string
	scene string
}

type remoteResolver struct {
	base   *url.URL
	scene  string
	client *http.Client
}

var (
	_ AssetResolver = &localResolver{}
	_ AssetResolver = &remoteResolver{}
)

// NewAssetResolver picks a resolver for source. An absolute http(s) URL resolves remotely: a URL
// ending in .gltf or .glb names the scene file and its directory is the base, otherwise the URL is
// the base and the scene file is scene.gltf. A path to an existing .gltf/.glb file is used directly.
// Anything else is a model name under <baseDir>/models/external/<source>/.
//
// Parameters:
//   - source: the URL, file path or model name
//   - baseDir: the asset root for model names; "~" is expanded
//   - client: the HTTP client used for remote sources; nil uses http.DefaultClient
//
// Returns:
//   - AssetResolver: the resolver
//   - error: an error if source is empty or baseDir cannot be expanded
func NewAssetResolver(source, baseDir string, client *http.Client) (AssetResolver, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("empty source")
	}

	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		if client == nil {
			client = http.DefaultClient
		}
		r := &remoteResolver{client: client, scene: defaultSceneFile}
		base := *u
		if isSceneFileName(u.Path) {
			r.scene = path.Base(u.Path)
			base.Path = path.Dir(u.Path)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		base.RawPath = ""
		base.RawQuery = ""
		base.Fragment = ""
		r.base = &base
		return r, nil
	}

	if isSceneFileName(source) {
		if expanded, err := homedir.Expand(source); err == nil {
			if info, statErr := os.Stat(expanded); statErr == nil && !info.IsDir() {
				return &localResolver{dir: filepath.Dir(expanded), scene: filepath.Base(expanded)}, nil
			}
		}
	}

	root, err := homedir.Expand(baseDir)
	if err != nil {
		return nil, fmt.Errorf("expanding asset dir %q: %w", baseDir, err)
	}
	dir := filepath.Join(root, "models", "external", source)
	scene := defaultSceneFile
	if _, err := os.Stat(filepath.Join(dir, defaultSceneFileGLB)); err == nil {
		scene = defaultSceneFileGLB
	}
	return &localResolver{dir: dir, scene: scene}, nil
}

func isSceneFileName(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".gltf" || ext == ".glb"
}

func (r *localResolver) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		decoded = name
	}

	p := filepath.Join(r.dir, filepath.FromSlash(decoded))
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errorf(ErrorKindNotFound, "%s does not exist", p)
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

func (r *localResolver) SceneFile() string {
	return r.scene
}

func (r *localResolver) Describe() string {
	return filepath.Join(r.dir, r.scene)
}

func (r *remoteResolver) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, errorf(ErrorKindParseError, "invalid resource name %q: %v", name, err)
	}
	target := r.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, errorf(ErrorKindNotFound, "%s returned %s", target, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return data, nil
}

func (r *remoteResolver) SceneFile() string {
	return r.scene
}

func (r *remoteResolver) Describe() string {
	return r.base.String() + r.scene
}
