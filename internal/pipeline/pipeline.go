package pipeline

import (
	"context"
	"fmt"

	"github.com/flowforge/agent/internal/logging"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// Result is the outcome of running an entire pipeline: the final
// environment and whether the last task produced content (spec §4.7 —
// "Return the final CommonContent { env: shared, content: none }" is
// the empty-pipeline case; when tasks run, their last content is
// surfaced here too so a host can inspect it).
type Result struct {
	Env        *pipelineenv.Environment
	ContentSet bool
	Content    any
}

// Run executes every task in p in map-insertion order (spec §4.7): the
// pipeline's env seeds every task (pipeline keys first, task keys
// override), tasks run strictly in sequence via RunTask, and
// TASK_CURRENT_NAME/TASK_PREVIOUS_NAME/CMD_CURRENT_CONTENT are
// maintained around each task per the process_tasks_serially contract
// (spec §4.6).
func (r *Runner) Run(ctx context.Context, log *logging.Logger, p *pipelinemodel.Pipeline) (Result, error) {
	log.Info("pipeline.process.start", "name", p.Name, "tasks", len(p.TaskOrder))

	shared := pipelineenv.New()
	if p.Env != nil {
		shared.Extend(p.Env)
	}

	if len(p.TaskOrder) == 0 {
		log.Info("pipeline.process.finish", "name", p.Name, "tasks", 0)
		return Result{Env: shared}, nil
	}

	var last TaskResult
	for ti, taskName := range p.TaskOrder {
		task := p.Tasks[taskName]

		shared.Insert(pipelineenv.KeyTaskCurrentName, taskName)

		taskEnv := shared.Clone()
		if task.Env != nil {
			taskEnv.Extend(task.Env)
		}

		res, err := r.RunTask(ctx, p.Name, taskName, task, taskEnv)
		if err != nil {
			log.Error("pipeline.process.task_failed", "name", p.Name, "task", taskName, "error", err)
			return Result{}, err
		}

		shared.Remove(pipelineenv.KeyTaskCurrentName)
		shared.Remove(pipelineenv.KeyCmdCurrentContent)
		shared.Extend(res.Env)

		shared.Insert(pipelineenv.KeyTaskPreviousName, taskName)
		if res.ContentSet {
			shared.Insert(pipelineenv.KeyCmdPreviousContent, res.Content)
			shared.Insert(fmt.Sprintf("%s__%s_TASK_CONTENT", p.Name, taskName), res.Content)
			shared.Insert(fmt.Sprintf("%s__%s[%d]_TASK_CONTENT", p.Name, taskName, ti), res.Content)
		}

		last = res
	}

	log.Info("pipeline.process.finish", "name", p.Name, "tasks", len(p.TaskOrder))
	return Result{Env: shared, ContentSet: last.ContentSet, Content: last.Content}, nil
}
