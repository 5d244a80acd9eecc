// Package hdf5 records boidswarm simulations to HDF5 files and loads them back.
package hdf5

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"gonum.org/v1/hdf5"
)

// A Dataset stipulates how to generate data and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single step.
	Dims []int

	// Data is a function that produces the data
	// as a pointer to a slice of row-major concrete values.
	Data func(s *boidswarm.Swarm) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 driver.
type Config struct {
	Output   string     // path of output file
	Steps    int        // total number of steps
	Step     func()     // go to next step
	RunID    string     // identifier of the run, saved as an attribute
	Datasets []*Dataset // list of datasets

	// Meta is a struct whose exported fields are saved
	// as attributes of the "config" dataset. It may be nil.
	Meta interface{}

	// Progress, if not nil, is called before each step.
	Progress func(step, total int)
}

// Run runs a simulation and saves data to an HDF5 file.
// Row k of every dataset holds the data before the k-th step.
func Run(s *boidswarm.Swarm, conf *Config) (err error) {
	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("hdf5: create %s: %w", conf.Output, err)
	}
	defer checkClose(&err, file)

	if err := saveConfig(file, conf); err != nil {
		return fmt.Errorf("hdf5: save config: %w", err)
	}

	for _, d := range conf.Datasets {
		if err := d.init(file, conf); err != nil {
			return fmt.Errorf("hdf5: dataset %q: %w", d.Name, err)
		}
		defer checkClose(&err, d)
	}

	for k := uint(0); k < uint(conf.Steps); k++ {
		if conf.Progress != nil {
			conf.Progress(int(k), conf.Steps)
		}

		for _, d := range conf.Datasets {
			start := make([]uint, len(d.Dims)+1)
			start[0] = k
			if err := d.fspace.SetOffset(start); err != nil {
				return err
			}
			if err := d.dset.WriteSubset(d.Data(s), d.mspace, d.fspace); err != nil {
				return fmt.Errorf("hdf5: write %q at step %d: %w", d.Name, k, err)
			}
		}

		conf.Step()
	}
	return nil
}

// A Record is what is recorded in the HDF5 file for each agent at each step.
// This structure is mapped to a compound datatype in HDF5 so member names are important.
type Record struct {
	Pos   [3]float64 // position
	Vel   [3]float64 // velocity
	Alive uint8      // 1 if the velocity is not degenerate
}

// Records converts agents to records.
func Records(agents []boidswarm.Agent) []Record {
	r := make([]Record, len(agents))
	for i := range agents {
		r[i].Pos = agents[i].Pos
		r[i].Vel = agents[i].Vel
		if agents[i].IsAlive() {
			r[i].Alive = 1
		}
	}
	return r
}

// AgentsDataset returns a dataset named "agents" holding the records of n agents.
func AgentsDataset(n int) *Dataset {
	return &Dataset{
		Name: "agents",
		Val:  Record{},
		Dims: []int{n},
		Data: func(s *boidswarm.Swarm) interface{} {
			r := Records(s.Agents)
			return &r
		},
	}
}

// CellsDataset returns a dataset holding the index of the cell of grid g
// that contains each of the n agents.
func CellsDataset(name string, g boidswarm.Grid, n int) *Dataset {
	return &Dataset{
		Name: name,
		Val:  int32(0),
		Dims: []int{n},
		Data: func(s *boidswarm.Swarm) interface{} {
			cells := make([]int32, len(s.Agents))
			for c, group := range s.GroupByPosition(g) {
				for _, i := range group {
					cells[i] = int32(c)
				}
			}
			return &cells
		},
	}
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the whole configuration plus some other appropriate metadata.
func saveConfig(file *hdf5.File, conf *Config) (err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	now := time.Now().String()
	if err := writeAttr(dset, scalar, "Time", &now); err != nil {
		return err
	}
	if conf.RunID != "" {
		id := conf.RunID
		if err := writeAttr(dset, scalar, "RunID", &id); err != nil {
			return err
		}
	}

	if conf.Meta == nil {
		return nil
	}
	v := reflect.Indirect(reflect.ValueOf(conf.Meta))
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("metadata must be a struct, got %s", v.Kind())
	}
	// work on an addressable copy
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	for i := 0; i < c.NumField(); i++ {
		f := c.Type().Field(i)
		if f.PkgPath != "" {
			continue
		}
		if err := writeAttr(dset, scalar, f.Name, c.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("attribute %s: %w", f.Name, err)
		}
	}
	return nil
}

// writeAttr writes the value pointed to by ptr as a scalar attribute of dset.
func writeAttr(dset *hdf5.Dataset, scalar *hdf5.Dataspace, name string, ptr interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(ptr).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	attr, err := dset.CreateAttribute(name, dtype, scalar)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(ptr, dtype)
}

// init creates the dataset in file.
func (d *Dataset) init(file *hdf5.File, conf *Config) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.Dims)+1)
	udims[0] = uint(conf.Steps)
	for i, n := range d.Dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1

	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
	}

	return err
}

// Close closes the HDF5 dataset and Dataspaces.
func (d *Dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	if err := d.fspace.Close(); err != nil {
		return err
	}
	return nil
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
